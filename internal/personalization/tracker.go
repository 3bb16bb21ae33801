// Package personalization maintains slowly-evolving per-item estimates
// of user-specific difficulty and memory strength. Both feed back into
// interval growth and queue priority.
package personalization

import (
	"math"

	"github.com/example/vocabsrs/pkg/models"
)

// Config holds the tracker's tuning knobs. The drift constants carry no
// empirical derivation, so they are configuration. Zero values produce
// defaults; see field comments.
type Config struct {
	Decay     float64 // zero → 0.9; per-step weight decay, most recent weighted highest
	DriftUp   float64 // zero → 0.1; difficulty increase when recent grades run below passing
	DriftDown float64 // zero → 0.05; difficulty decrease when recent grades run above passing
	Window    int     // zero → models.HistoryWindow; number of recent grades considered
}

func (c Config) withDefaults() Config {
	if c.Decay == 0 {
		c.Decay = 0.9
	}
	if c.DriftUp == 0 {
		c.DriftUp = 0.1
	}
	if c.DriftDown == 0 {
		c.DriftDown = 0.05
	}
	if c.Window == 0 {
		c.Window = models.HistoryWindow
	}
	return c
}

// Tracker updates personalization fields from an item's review history.
type Tracker struct {
	cfg Config
}

// NewTracker creates a Tracker with the given config.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg.withDefaults()}
}

// Apply recomputes the item's memory strength and drifts its user
// difficulty based on the recent history. Call after the scheduling
// engine has appended the latest review event.
func (t *Tracker) Apply(item *models.MemoryItem) {
	grades := t.recentGrades(item)
	if len(grades) == 0 {
		return
	}
	item.MemoryStrength = t.memoryStrength(grades)

	// Difficulty drifts up when the learner keeps failing, down when
	// they keep passing, by asymmetric steps.
	if average(grades) < 3.0 {
		item.UserDifficulty = models.ClampUserDifficulty(item.UserDifficulty + t.cfg.DriftUp)
	} else {
		item.UserDifficulty = models.ClampUserDifficulty(item.UserDifficulty - t.cfg.DriftDown)
	}
}

// Rederive recomputes memory strength alone from stored history without
// drifting difficulty. The nightly maintenance pass uses it to heal
// items whose in-memory history was truncated.
func (t *Tracker) Rederive(item *models.MemoryItem) {
	grades := t.recentGrades(item)
	if len(grades) == 0 {
		item.MemoryStrength = 0
		return
	}
	item.MemoryStrength = t.memoryStrength(grades)
}

// memoryStrength is a decay-weighted average of recent grades,
// normalized to [0, 1]. grades is ordered oldest-first.
func (t *Tracker) memoryStrength(grades []int) float64 {
	var weighted, weightSum float64
	n := len(grades)
	for i, g := range grades {
		// Most recent grade gets weight 1, each older step decays.
		w := math.Pow(t.cfg.Decay, float64(n-1-i))
		weighted += w * float64(g)
		weightSum += w
	}
	return weighted / (5.0 * weightSum)
}

func (t *Tracker) recentGrades(item *models.MemoryItem) []int {
	history := item.History
	if len(history) > t.cfg.Window {
		history = history[len(history)-t.cfg.Window:]
	}
	grades := make([]int, len(history))
	for i, ev := range history {
		grades[i] = ev.Grade
	}
	return grades
}

func average(grades []int) float64 {
	var sum int
	for _, g := range grades {
		sum += g
	}
	return float64(sum) / float64(len(grades))
}
