package core

import "errors"

var (
	ErrInvalidType = errors.New("invalid content type")
	ErrMissingID   = errors.New("item ID required")
	ErrDuplicateID = errors.New("duplicate item ID")
	ErrDecodeImage = errors.New("image payload could not be decoded")
)
