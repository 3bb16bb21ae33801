package models

import (
	"fmt"
	"time"
)

// Scheduling defaults for freshly created memory items.
const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3

	// HistoryWindow bounds the per-item review log kept in memory and
	// persisted with the record. Older events are dropped.
	HistoryWindow = 50

	minUserDifficulty = 0.1
	maxUserDifficulty = 1.0
)

// ReviewEvent is one entry in a memory item's review history.
type ReviewEvent struct {
	Timestamp    time.Time     `json:"timestamp" db:"timestamp"`
	Grade        int           `json:"grade" db:"grade"`
	ResponseTime time.Duration `json:"response_time" db:"response_time"`
	Confidence   float64       `json:"confidence" db:"confidence"`
}

// MemoryItem is the per-learner, per-word scheduling record.
// It is mutated only by the scheduling engine in response to a graded
// review; everything else treats it as a value.
type MemoryItem struct {
	LearnerID      string        `json:"learner_id" db:"learner_id"`
	ItemID         string        `json:"item_id" db:"item_id"`
	EaseFactor     float64       `json:"ease_factor" db:"ease_factor"`
	IntervalDays   int           `json:"interval_days" db:"interval_days"`
	Repetitions    int           `json:"repetitions" db:"repetitions"`
	LastReviewedAt time.Time     `json:"last_reviewed_at" db:"last_reviewed_at"`
	NextReviewAt   time.Time     `json:"next_review_at" db:"next_review_at"`
	Phase          Phase         `json:"phase" db:"phase"`
	LastGrade      int           `json:"last_grade" db:"last_grade"`
	History        []ReviewEvent `json:"history" db:"-"`

	// Personalization fields, maintained by the tracker.
	UserDifficulty float64 `json:"user_difficulty" db:"user_difficulty"`
	MemoryStrength float64 `json:"memory_strength" db:"memory_strength"`

	// Version supports optimistic concurrency in the store. Zero means
	// the record has never been persisted.
	Version int64 `json:"version" db:"version"`
}

// NewMemoryItem creates the default record for an item entering a
// learner's deck. The content difficulty hint (1-5) seeds the initial
// user difficulty estimate; zero or out-of-range hints fall back to
// the neutral midpoint.
func NewMemoryItem(learnerID, itemID string, difficultyHint int, now time.Time) MemoryItem {
	difficulty := 0.5
	if difficultyHint >= 1 && difficultyHint <= 5 {
		difficulty = clampDifficulty(float64(difficultyHint) / 5.0)
	}
	return MemoryItem{
		LearnerID:      learnerID,
		ItemID:         itemID,
		EaseFactor:     InitialEaseFactor,
		IntervalDays:   0,
		Repetitions:    0,
		LastReviewedAt: now,
		NextReviewAt:   now,
		Phase:          PhaseNew,
		UserDifficulty: difficulty,
		MemoryStrength: 0,
	}
}

// Clone returns a deep copy of the item. The history slice is copied so
// the clone can be mutated independently.
func (m MemoryItem) Clone() MemoryItem {
	out := m
	if m.History != nil {
		out.History = make([]ReviewEvent, len(m.History))
		copy(out.History, m.History)
	}
	return out
}

// AppendHistory appends one review event, truncating to HistoryWindow.
func (m *MemoryItem) AppendHistory(ev ReviewEvent) {
	m.History = append(m.History, ev)
	if len(m.History) > HistoryWindow {
		m.History = m.History[len(m.History)-HistoryWindow:]
	}
}

// IsDue reports whether the item belongs in a review queue built at asOf:
// either it has never left the New phase or its scheduled review time has
// passed.
func (m MemoryItem) IsDue(asOf time.Time) bool {
	return m.Phase == PhaseNew || !m.NextReviewAt.After(asOf)
}

// Validate checks the record invariants. A failure indicates a bug in
// whatever produced the record, not bad user input.
func (m MemoryItem) Validate() error {
	if m.LearnerID == "" {
		return fmt.Errorf("models: memory item missing learner id")
	}
	if m.ItemID == "" {
		return fmt.Errorf("models: memory item missing item id")
	}
	if !m.Phase.IsValid() {
		return fmt.Errorf("models: memory item %s: invalid phase %d", m.ItemID, int(m.Phase))
	}
	if m.EaseFactor < MinEaseFactor {
		return fmt.Errorf("models: memory item %s: ease factor %.3f below floor %.1f", m.ItemID, m.EaseFactor, MinEaseFactor)
	}
	if m.IntervalDays < 0 {
		return fmt.Errorf("models: memory item %s: negative interval %d", m.ItemID, m.IntervalDays)
	}
	if m.IntervalDays == 0 {
		switch m.Phase {
		case PhaseNew, PhaseLearning, PhaseRelearning:
		default:
			return fmt.Errorf("models: memory item %s: zero interval in phase %s", m.ItemID, m.Phase)
		}
	}
	if m.Repetitions < 0 {
		return fmt.Errorf("models: memory item %s: negative repetitions %d", m.ItemID, m.Repetitions)
	}
	if m.NextReviewAt.Before(m.LastReviewedAt) {
		return fmt.Errorf("models: memory item %s: next review %v before last review %v", m.ItemID, m.NextReviewAt, m.LastReviewedAt)
	}
	if m.LastGrade < 0 || m.LastGrade > 5 {
		return fmt.Errorf("models: memory item %s: last grade %d out of range", m.ItemID, m.LastGrade)
	}
	if m.UserDifficulty < minUserDifficulty || m.UserDifficulty > maxUserDifficulty {
		return fmt.Errorf("models: memory item %s: user difficulty %.3f out of range", m.ItemID, m.UserDifficulty)
	}
	if m.MemoryStrength < 0 || m.MemoryStrength > 1 {
		return fmt.Errorf("models: memory item %s: memory strength %.3f out of range", m.ItemID, m.MemoryStrength)
	}
	return nil
}

func clampDifficulty(d float64) float64 {
	if d < minUserDifficulty {
		return minUserDifficulty
	}
	if d > maxUserDifficulty {
		return maxUserDifficulty
	}
	return d
}

// ClampUserDifficulty bounds a difficulty estimate to its valid range.
// Exposed for the personalization tracker.
func ClampUserDifficulty(d float64) float64 {
	return clampDifficulty(d)
}
