package core

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// DetectImage checks that data decodes as a supported bitmap and returns its
// MIME type.
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrDecodeImage)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}
	switch format {
	case "png":
		return MIMEPNG, nil
	case "jpeg":
		return MIMEJPEG, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", ErrDecodeImage, format)
	}
}

// DataURI encodes data as a self-contained data: URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsImageMIME reports whether mime is one of ImageMIMEs.
func IsImageMIME(mime string) bool {
	for _, m := range ImageMIMEs {
		if m == mime {
			return true
		}
	}
	return false
}
