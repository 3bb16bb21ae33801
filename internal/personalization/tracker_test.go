package personalization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/vocabsrs/pkg/models"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func itemWithGrades(difficulty float64, grades ...int) models.MemoryItem {
	item := models.NewMemoryItem("learner-1", "item-1", 0, t0)
	item.UserDifficulty = difficulty
	for i, g := range grades {
		item.AppendHistory(models.ReviewEvent{
			Timestamp: t0.AddDate(0, 0, i),
			Grade:     g,
		})
	}
	return item
}

func TestApplyEmptyHistoryIsNoop(t *testing.T) {
	tr := NewTracker(Config{})
	item := itemWithGrades(0.5)

	tr.Apply(&item)
	assert.Equal(t, 0.5, item.UserDifficulty)
	assert.Equal(t, 0.0, item.MemoryStrength)
}

func TestMemoryStrengthSingleGrade(t *testing.T) {
	tr := NewTracker(Config{})

	perfect := itemWithGrades(0.5, 5)
	tr.Apply(&perfect)
	assert.InDelta(t, 1.0, perfect.MemoryStrength, 1e-9)

	blackout := itemWithGrades(0.5, 0)
	tr.Apply(&blackout)
	assert.InDelta(t, 0.0, blackout.MemoryStrength, 1e-9)
}

func TestMemoryStrengthWeighsRecentGradesHigher(t *testing.T) {
	tr := NewTracker(Config{})

	// Old failure, recent success: weights 0.9 and 1.0.
	recovering := itemWithGrades(0.5, 0, 5)
	tr.Apply(&recovering)
	assert.InDelta(t, 5.0/(5.0*1.9), recovering.MemoryStrength, 1e-9)

	// Old success, recent failure: strength must be lower.
	fading := itemWithGrades(0.5, 5, 0)
	tr.Apply(&fading)
	assert.Less(t, fading.MemoryStrength, recovering.MemoryStrength)
}

func TestDifficultyDriftsUpOnFailure(t *testing.T) {
	tr := NewTracker(Config{})
	item := itemWithGrades(0.5, 1, 2)

	tr.Apply(&item)
	assert.InDelta(t, 0.6, item.UserDifficulty, 1e-9)
}

func TestDifficultyDriftsDownOnSuccess(t *testing.T) {
	tr := NewTracker(Config{})
	item := itemWithGrades(0.5, 4, 5)

	tr.Apply(&item)
	assert.InDelta(t, 0.45, item.UserDifficulty, 1e-9)
}

func TestDifficultyClamped(t *testing.T) {
	tr := NewTracker(Config{})

	atCeiling := itemWithGrades(1.0, 0)
	tr.Apply(&atCeiling)
	assert.Equal(t, 1.0, atCeiling.UserDifficulty)

	atFloor := itemWithGrades(0.1, 5)
	tr.Apply(&atFloor)
	assert.Equal(t, 0.1, atFloor.UserDifficulty)
}

func TestApplyRespectsWindow(t *testing.T) {
	tr := NewTracker(Config{Window: 2})

	// Only the last two grades count: average of (5, 5) is passing, so
	// the early failures are ignored.
	item := itemWithGrades(0.5, 0, 0, 0, 5, 5)
	tr.Apply(&item)
	assert.InDelta(t, 0.45, item.UserDifficulty, 1e-9)
	assert.InDelta(t, 1.0, item.MemoryStrength, 1e-9)
}

func TestRederiveDoesNotDriftDifficulty(t *testing.T) {
	tr := NewTracker(Config{})
	item := itemWithGrades(0.5, 5, 5, 5)

	tr.Rederive(&item)
	assert.Equal(t, 0.5, item.UserDifficulty)
	assert.InDelta(t, 1.0, item.MemoryStrength, 1e-9)

	empty := itemWithGrades(0.5)
	empty.MemoryStrength = 0.7
	tr.Rederive(&empty)
	assert.Equal(t, 0.0, empty.MemoryStrength)
}
