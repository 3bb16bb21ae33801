package srs

import (
	"fmt"

	"github.com/example/vocabsrs/pkg/models"
)

// Params holds the tuning knobs of the scheduling algorithm. The drift
// and mastery constants have no empirical derivation behind them, so
// they are configuration rather than hardcoded truths. Zero values
// produce the defaults; see field comments.
type Params struct {
	EaseFloor          float64 // zero → 1.3
	MasteryRepetitions int     // zero → 8; streak length required for Mastered
	MasteryEase        float64 // zero → 2.8; ease required for Mastered
	MaxIntervalDays    int     // zero → 365
	DifficultyWeight   float64 // zero → 0.3; interval compression per unit of user difficulty
}

// withDefaults fills zero-value fields.
func (p Params) withDefaults() Params {
	if p.EaseFloor == 0 {
		p.EaseFloor = models.MinEaseFactor
	}
	if p.MasteryRepetitions == 0 {
		p.MasteryRepetitions = 8
	}
	if p.MasteryEase == 0 {
		p.MasteryEase = 2.8
	}
	if p.MaxIntervalDays == 0 {
		p.MaxIntervalDays = 365
	}
	if p.DifficultyWeight == 0 {
		p.DifficultyWeight = 0.3
	}
	return p
}

func (p Params) validate() error {
	if p.EaseFloor < 1.0 {
		return fmt.Errorf("%w: ease floor %.3f below 1.0", ErrInvalidParams, p.EaseFloor)
	}
	if p.MasteryRepetitions < 1 {
		return fmt.Errorf("%w: mastery repetitions %d", ErrInvalidParams, p.MasteryRepetitions)
	}
	if p.MasteryEase < p.EaseFloor {
		return fmt.Errorf("%w: mastery ease %.3f below ease floor", ErrInvalidParams, p.MasteryEase)
	}
	if p.MaxIntervalDays < 1 {
		return fmt.Errorf("%w: max interval %d days", ErrInvalidParams, p.MaxIntervalDays)
	}
	if p.DifficultyWeight < 0 || p.DifficultyWeight >= 1 {
		return fmt.Errorf("%w: difficulty weight %.3f out of [0, 1)", ErrInvalidParams, p.DifficultyWeight)
	}
	return nil
}
