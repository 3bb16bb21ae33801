// Package content is the boundary to the content provider: it supplies
// item metadata (word, meaning, example usage) and difficulty hints.
// The scheduler only consumes an opaque item identifier and a numeric
// difficulty hint at item-creation time; it never mutates content.
package content

import (
	"context"
	"errors"
	"fmt"
)

// ErrItemNotFound means the content provider has no item with that ID.
var ErrItemNotFound = errors.New("content: item not found")

// Metadata is what the scheduling core reads about a content item.
type Metadata struct {
	DifficultyHint int    // 1-5 scale; 0 means unknown
	ContentRef     string // opaque reference for the enclosing application
}

// Provider supplies item metadata to the scheduling core.
type Provider interface {
	ItemMetadata(ctx context.Context, itemID string) (Metadata, error)
}

// Static is a fixed in-memory Provider, mainly for tests and seeded
// demo decks.
type Static map[string]Metadata

// ItemMetadata implements Provider.
func (s Static) ItemMetadata(_ context.Context, itemID string) (Metadata, error) {
	meta, ok := s[itemID]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	return meta, nil
}
