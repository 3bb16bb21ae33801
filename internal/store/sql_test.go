package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabsrs/pkg/models"
)

func openTestSQL(t *testing.T) *SQL {
	t.Helper()
	s, err := OpenSQL("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSQLRejectsUnknownDriver(t *testing.T) {
	_, err := OpenSQL("mysql", "dsn")
	assert.Error(t, err)
}

func TestSQLGetCreatesDefault(t *testing.T) {
	s := openTestSQL(t)
	ctx := context.Background()

	item, err := s.Get(ctx, "learner-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseNew, item.Phase)
	assert.Equal(t, models.InitialEaseFactor, item.EaseFactor)
	assert.Equal(t, int64(1), item.Version)

	again, err := s.Get(ctx, "learner-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.Version)
}

func TestSQLPutPersistsRecordAndHistory(t *testing.T) {
	s := openTestSQL(t)
	ctx := context.Background()

	item, err := s.Get(ctx, "learner-1", "item-1")
	require.NoError(t, err)

	item.Phase = models.PhaseLearning
	item.IntervalDays = 1
	item.Repetitions = 1
	item.LastGrade = 4
	item.NextReviewAt = item.LastReviewedAt.AddDate(0, 0, 1)
	item.AppendHistory(models.ReviewEvent{
		Timestamp:    t0,
		Grade:        4,
		ResponseTime: 1500 * time.Millisecond,
		Confidence:   0.8,
	})

	stored, err := s.Put(ctx, item, "review-key-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)

	got, err := s.Get(ctx, "learner-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseLearning, got.Phase)
	assert.Equal(t, 1, got.Repetitions)
	require.Len(t, got.History, 1)
	assert.Equal(t, 4, got.History[0].Grade)
	assert.Equal(t, 1500*time.Millisecond, got.History[0].ResponseTime)
}

func TestSQLPutRejectsStaleVersion(t *testing.T) {
	s := openTestSQL(t)
	ctx := context.Background()

	item, err := s.Get(ctx, "learner-1", "item-1")
	require.NoError(t, err)

	first := item.Clone()
	first.Repetitions = 1
	_, err = s.Put(ctx, first, "key-1")
	require.NoError(t, err)

	stale := item.Clone()
	stale.Repetitions = 9
	_, err = s.Put(ctx, stale, "key-2")
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestSQLPutRejectsDuplicateReviewKey(t *testing.T) {
	s := openTestSQL(t)
	ctx := context.Background()

	item, err := s.Get(ctx, "learner-1", "item-1")
	require.NoError(t, err)

	item.Repetitions = 1
	stored, err := s.Put(ctx, item, "review-key")
	require.NoError(t, err)

	stored.Repetitions = 2
	_, err = s.Put(ctx, stored, "review-key")
	assert.ErrorIs(t, err, ErrDuplicateWrite)

	got, err := s.Get(ctx, "learner-1", "item-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Repetitions)
}

func TestSQLPutInsertsNewRecord(t *testing.T) {
	s := openTestSQL(t)
	ctx := context.Background()

	item := models.NewMemoryItem("learner-1", "seeded", 4, t0)
	stored, err := s.Put(ctx, item, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)

	got, err := s.Get(ctx, "learner-1", "seeded")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, got.UserDifficulty, 1e-9)
}

func TestSQLListDue(t *testing.T) {
	s := openTestSQL(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "learner-1", "new-item")
	require.NoError(t, err)

	overdue := models.NewMemoryItem("learner-1", "overdue", 0, t0.AddDate(0, 0, -10))
	overdue.Phase = models.PhaseReview
	overdue.IntervalDays = 3
	overdue.Repetitions = 3
	overdue.NextReviewAt = overdue.LastReviewedAt.AddDate(0, 0, 3)
	_, err = s.Put(ctx, overdue, "")
	require.NoError(t, err)

	future := models.NewMemoryItem("learner-1", "future", 0, t0)
	future.Phase = models.PhaseReview
	future.IntervalDays = 30
	future.Repetitions = 5
	future.NextReviewAt = t0.AddDate(0, 0, 30)
	_, err = s.Put(ctx, future, "")
	require.NoError(t, err)

	due, err := s.ListDue(ctx, "learner-1", t0)
	require.NoError(t, err)

	ids := make([]string, len(due))
	for i, item := range due {
		ids[i] = item.ItemID
	}
	assert.ElementsMatch(t, []string{"new-item", "overdue"}, ids)
}

func TestSQLListAllAndLearners(t *testing.T) {
	s := openTestSQL(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		_, err := s.Get(ctx, "learner-1", id)
		require.NoError(t, err)
	}
	_, err := s.Get(ctx, "learner-2", "c")
	require.NoError(t, err)

	all, err := s.ListAll(ctx, "learner-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	learners, err := s.Learners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"learner-1", "learner-2"}, learners)
}
