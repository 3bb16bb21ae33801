package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabsrs/internal/store"
	"github.com/example/vocabsrs/pkg/models"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedReview(t *testing.T, s store.Store, itemID string, ease float64, nextReview time.Time) {
	t.Helper()
	item := models.NewMemoryItem("learner-1", itemID, 0, nextReview.AddDate(0, 0, -3))
	item.Phase = models.PhaseReview
	item.EaseFactor = ease
	item.IntervalDays = 3
	item.Repetitions = 3
	item.NextReviewAt = nextReview
	_, err := s.Put(context.Background(), item, "")
	require.NoError(t, err)
}

func TestBuildReturnsNewAndOverdue(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	_, err := s.Get(ctx, "learner-1", "fresh")
	require.NoError(t, err)
	seedReview(t, s, "overdue", 2.5, t0.AddDate(0, 0, -1))
	seedReview(t, s, "future", 2.5, t0.AddDate(0, 0, 5))

	due, err := NewBuilder(s).Build(ctx, "learner-1", t0)
	require.NoError(t, err)

	ids := make([]string, len(due))
	for i, item := range due {
		ids[i] = item.ItemID
	}
	assert.ElementsMatch(t, []string{"fresh", "overdue"}, ids)
}

func TestBuildIdempotent(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	_, err := s.Get(ctx, "learner-1", "a")
	require.NoError(t, err)
	seedReview(t, s, "b", 2.5, t0.AddDate(0, 0, -2))

	b := NewBuilder(s)
	first, err := b.Build(ctx, "learner-1", t0)
	require.NoError(t, err)
	second, err := b.Build(ctx, "learner-1", t0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildEmptyQueue(t *testing.T) {
	s := store.NewMemory()
	due, err := NewBuilder(s).Build(context.Background(), "learner-1", t0)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestPartitionSplitsAndOrders(t *testing.T) {
	items := []models.MemoryItem{
		{ItemID: "r-easy", Phase: models.PhaseReview, EaseFactor: 2.8, NextReviewAt: t0},
		{ItemID: "n-1", Phase: models.PhaseNew, EaseFactor: 2.5, NextReviewAt: t0},
		{ItemID: "r-hard", Phase: models.PhaseReview, EaseFactor: 1.5, NextReviewAt: t0},
		{ItemID: "n-2", Phase: models.PhaseNew, EaseFactor: 2.5, NextReviewAt: t0.Add(-time.Hour)},
	}

	fresh, reviews := Partition(items)

	require.Len(t, fresh, 2)
	require.Len(t, reviews, 2)
	// Same ease: the more overdue New item comes first.
	assert.Equal(t, "n-2", fresh[0].ItemID)
	// Hardest review first.
	assert.Equal(t, "r-hard", reviews[0].ItemID)
}
