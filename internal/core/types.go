package core

type ContentType string

const (
	ContentTypeLink    ContentType = "link"
	ContentTypeImage   ContentType = "image"
	ContentTypeText    ContentType = "text"
	ContentTypeArticle ContentType = "article"
)

// ContentTypes lists every valid ContentType.
var ContentTypes = []ContentType{
	ContentTypeLink,
	ContentTypeImage,
	ContentTypeText,
	ContentTypeArticle,
}

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeLink, ContentTypeImage, ContentTypeText, ContentTypeArticle:
		return true
	}
	return false
}

func (t ContentType) String() string { return string(t) }
