package srs

import (
	"math"
	"time"

	"github.com/example/vocabsrs/pkg/models"
)

// Engine applies the SuperMemo-2 scheduling algorithm with per-learner
// personalization. Update is a pure transformation: no I/O, no hidden
// state, deterministic for a given input.
type Engine struct {
	params Params
}

// New creates an Engine from the given params. Zero-value fields are
// filled with defaults; invalid values return an error.
func New(params Params) (*Engine, error) {
	p := params.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Engine{params: p}, nil
}

// Params returns the resolved tuning parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Update processes one graded review of the item at the given time.
// It returns the updated record; the input is not mutated. A grade
// outside 0-5 returns ErrInvalidGrade and leaves the record unchanged.
func (e *Engine) Update(item models.MemoryItem, grade Grade, responseTime time.Duration, confidence float64, now time.Time) (models.MemoryItem, error) {
	if !grade.IsValid() {
		return models.MemoryItem{}, ErrInvalidGrade
	}
	it := item.Clone()

	// Ease factor update applies on every review regardless of phase.
	// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), floored.
	q := float64(grade)
	ease := it.EaseFactor + (0.1 - (5.0-q)*(0.08+(5.0-q)*0.02))
	if ease < e.params.EaseFloor {
		ease = e.params.EaseFloor
	}
	it.EaseFactor = ease

	var interval int
	if grade.Passing() {
		it.Repetitions++
		switch it.Repetitions {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			// Higher user-specific difficulty compresses interval
			// growth. The fixed early steps stay fixed, and a
			// successful recall never shortens the schedule.
			interval = int(math.Round(float64(it.IntervalDays) * ease))
			interval = e.compressInterval(interval, it.UserDifficulty)
			if interval < it.IntervalDays {
				interval = it.IntervalDays
			}
		}
		if interval > e.params.MaxIntervalDays {
			interval = e.params.MaxIntervalDays
		}
	} else {
		// Lapse: the streak restarts and the item comes back the
		// next day.
		it.Repetitions = 0
		interval = 1
	}

	it.Phase = e.nextPhase(it.Phase, grade, it.Repetitions, ease)
	it.IntervalDays = interval

	it.LastReviewedAt = now
	it.NextReviewAt = now.AddDate(0, 0, interval)
	it.LastGrade = int(grade)
	it.AppendHistory(models.ReviewEvent{
		Timestamp:    now,
		Grade:        int(grade),
		ResponseTime: responseTime,
		Confidence:   confidence,
	})
	return it, nil
}

// compressInterval scales a successful interval down by the learner's
// item-specific difficulty, never below one day.
func (e *Engine) compressInterval(interval int, userDifficulty float64) int {
	scaled := int(math.Round(float64(interval) * (1.0 - e.params.DifficultyWeight*userDifficulty)))
	if scaled < 1 {
		return 1
	}
	return scaled
}

// nextPhase implements the phase state machine. Repetitions and ease
// are the values after this review's update.
func (e *Engine) nextPhase(phase models.Phase, grade Grade, repetitions int, ease float64) models.Phase {
	switch phase {
	case models.PhaseNew:
		if grade.Passing() {
			return models.PhaseLearning
		}
		return models.PhaseNew
	case models.PhaseLearning:
		if !grade.Passing() {
			return models.PhaseRelearning
		}
		if grade >= GradeCorrectHesitation && repetitions >= 2 {
			return models.PhaseReview
		}
		return models.PhaseLearning
	case models.PhaseReview:
		if !grade.Passing() {
			return models.PhaseRelearning
		}
		if repetitions >= e.params.MasteryRepetitions && ease > e.params.MasteryEase {
			return models.PhaseMastered
		}
		return models.PhaseReview
	case models.PhaseRelearning:
		if grade.Passing() {
			return models.PhaseLearning
		}
		return models.PhaseRelearning
	case models.PhaseMastered:
		if !grade.Passing() {
			return models.PhaseReview
		}
		return models.PhaseMastered
	default:
		return phase
	}
}
