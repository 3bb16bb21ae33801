package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/vocabsrs/internal/store"
	"github.com/example/vocabsrs/pkg/models"
)

// Seeder creates memory item records for content items entering a
// learner's deck. The provider's difficulty hint seeds the initial
// user-difficulty estimate; items already in the deck are left alone.
type Seeder struct {
	store    store.Store
	provider Provider
}

// NewSeeder creates a Seeder.
func NewSeeder(s store.Store, p Provider) *Seeder {
	return &Seeder{store: s, provider: p}
}

// Seed ensures a memory item exists for each content item ID, returning
// the number of records created.
func (s *Seeder) Seed(ctx context.Context, learnerID string, itemIDs []string, now time.Time) (int, error) {
	created := 0
	for _, id := range itemIDs {
		meta, err := s.provider.ItemMetadata(ctx, id)
		if err != nil {
			return created, fmt.Errorf("content: seed %s: %w", id, err)
		}
		item := models.NewMemoryItem(learnerID, id, meta.DifficultyHint, now)
		if _, err := s.store.Put(ctx, item, ""); err != nil {
			// A version conflict means the item is already in the deck.
			if errors.Is(err, store.ErrVersionConflict) {
				continue
			}
			return created, fmt.Errorf("content: seed %s: %w", id, err)
		}
		created++
	}
	return created, nil
}
