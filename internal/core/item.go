package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Item is one captured paste. Field names on the wire match the collection
// format written under the items key.
type Item struct {
	ID      string      `json:"id"`
	Type    ContentType `json:"type"`
	Content string      `json:"content"`
	Tags    []string    `json:"tags"`

	CreatedAt time.Time `json:"createdAt"`

	Preview string `json:"preview,omitempty"`
	Folder  string `json:"folder,omitempty"`
}

// NewItem builds an item with a fresh id and no tags.
func NewItem(typ ContentType, content string, now time.Time) Item {
	return Item{
		ID:        uuid.NewString(),
		Type:      typ,
		Content:   content,
		Tags:      []string{},
		CreatedAt: now,
	}
}

// MarshalJSON keeps tags as [] rather than null.
func (it Item) MarshalJSON() ([]byte, error) {
	type alias Item
	a := alias(it)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return json.Marshal(a)
}
