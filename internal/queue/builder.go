// Package queue computes the set of items due for review.
package queue

import (
	"context"
	"sort"
	"time"

	"github.com/example/vocabsrs/internal/store"
	"github.com/example/vocabsrs/pkg/models"
)

// Builder computes a learner's due set at a point in time. It imposes
// no ordering semantics; selection is the session manager's job.
type Builder struct {
	store store.Store
}

// NewBuilder creates a Builder over the given store.
func NewBuilder(s store.Store) *Builder {
	return &Builder{store: s}
}

// Build returns every item due at asOf: phase New, or scheduled review
// time at or before asOf. With the same asOf and no intervening writes
// the result is identical across calls.
func (b *Builder) Build(ctx context.Context, learnerID string, asOf time.Time) ([]models.MemoryItem, error) {
	items, err := b.store.ListDue(ctx, learnerID, asOf)
	if err != nil {
		return nil, err
	}
	due := items[:0]
	for _, item := range items {
		// The store already filters; re-check to keep the contract
		// independent of backend behavior.
		if item.IsDue(asOf) {
			due = append(due, item)
		}
	}
	return due, nil
}

// Partition splits a due set into never-studied items and everything
// else. Within each pool, items are ordered the way the session manager
// presents them: hardest (lowest ease) first, then most overdue.
func Partition(items []models.MemoryItem) (fresh, reviews []models.MemoryItem) {
	for _, item := range items {
		if item.Phase == models.PhaseNew {
			fresh = append(fresh, item)
		} else {
			reviews = append(reviews, item)
		}
	}
	sortPool(fresh)
	sortPool(reviews)
	return fresh, reviews
}

func sortPool(pool []models.MemoryItem) {
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].EaseFactor != pool[j].EaseFactor {
			return pool[i].EaseFactor < pool[j].EaseFactor
		}
		if !pool[i].NextReviewAt.Equal(pool[j].NextReviewAt) {
			return pool[i].NextReviewAt.Before(pool[j].NextReviewAt)
		}
		return pool[i].ItemID < pool[j].ItemID
	})
}
