package core

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetectImagePNG(t *testing.T) {
	mime, err := DetectImage(tinyPNG(t))
	require.NoError(t, err)
	assert.Equal(t, MIMEPNG, mime)
}

func TestDetectImageGarbage(t *testing.T) {
	_, err := DetectImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrDecodeImage)

	_, err = DetectImage(nil)
	assert.ErrorIs(t, err, ErrDecodeImage, "empty payload")
}

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,YWJj", DataURI(MIMEPNG, []byte("abc")))
	assert.Equal(t, "data:image/jpeg;base64,", DataURI(MIMEJPEG, nil))
}

func TestIsImageMIME(t *testing.T) {
	assert.True(t, IsImageMIME(MIMEJPEG))
	assert.False(t, IsImageMIME(MIMEPlain))
}
