package core

import "sort"

// Representation MIME types a paste event may offer.
const (
	MIMEHTML    = "text/html"
	MIMEURIList = "text/uri-list"
	MIMEPlain   = "text/plain"
	MIMEPNG     = "image/png"
	MIMEJPEG    = "image/jpeg"
)

// ImageMIMEs are the bitmap representations the vault accepts.
var ImageMIMEs = []string{MIMEPNG, MIMEJPEG}

// Blob is a binary payload attached to a paste event.
type Blob struct {
	MIME string
	Data []byte
}

// PasteEvent carries the alternative representations offered by a single
// paste. A representation may be offered with an empty value.
type PasteEvent struct {
	data  map[string]string
	files []Blob
}

func NewPasteEvent() *PasteEvent {
	return &PasteEvent{data: make(map[string]string)}
}

// PlainText is shorthand for an event that only offers text/plain.
func PlainText(s string) *PasteEvent {
	return NewPasteEvent().With(MIMEPlain, s)
}

// With offers a textual representation.
func (e *PasteEvent) With(mime, value string) *PasteEvent {
	e.data[mime] = value
	return e
}

// Attach offers a binary representation. The blob's MIME is also reported by
// Has and Types, the way paste producers list file types alongside text ones.
func (e *PasteEvent) Attach(b Blob) *PasteEvent {
	e.files = append(e.files, b)
	if _, ok := e.data[b.MIME]; !ok {
		e.data[b.MIME] = ""
	}
	return e
}

func (e *PasteEvent) Has(mime string) bool {
	if e == nil {
		return false
	}
	_, ok := e.data[mime]
	return ok
}

func (e *PasteEvent) HasAny(mimes ...string) bool {
	for _, m := range mimes {
		if e.Has(m) {
			return true
		}
	}
	return false
}

// Get returns the textual value for mime, or "" when not offered.
func (e *PasteEvent) Get(mime string) string {
	if e == nil {
		return ""
	}
	return e.data[mime]
}

// File returns the first attached blob whose MIME is one of mimes.
// With no arguments it returns the first blob.
func (e *PasteEvent) File(mimes ...string) (Blob, bool) {
	if e == nil {
		return Blob{}, false
	}
	for _, b := range e.files {
		if len(mimes) == 0 {
			return b, true
		}
		for _, m := range mimes {
			if b.MIME == m {
				return b, true
			}
		}
	}
	return Blob{}, false
}

// Types lists offered representations in sorted order.
func (e *PasteEvent) Types() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.data))
	for m := range e.data {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
