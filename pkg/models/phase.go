package models

import (
	"database/sql/driver"
	"encoding"
	"encoding/json"
	"fmt"
)

// Phase represents the learning stage of a memory item.
type Phase int

const (
	PhaseNew        Phase = iota + 1 // Never answered correctly.
	PhaseLearning                    // Correctly answered, building initial intervals.
	PhaseReview                      // Entered the long-term review cycle.
	PhaseRelearning                  // Lapsed, relearning.
	PhaseMastered                    // Long streak with high ease; can still regress.
)

var (
	phaseNames = [...]string{
		PhaseNew:        "New",
		PhaseLearning:   "Learning",
		PhaseReview:     "Review",
		PhaseRelearning: "Relearning",
		PhaseMastered:   "Mastered",
	}
	phaseByName = map[string]Phase{
		"New":        PhaseNew,
		"Learning":   PhaseLearning,
		"Review":     PhaseReview,
		"Relearning": PhaseRelearning,
		"Mastered":   PhaseMastered,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Phase(0)
	_ json.Marshaler           = Phase(0)
	_ json.Unmarshaler         = (*Phase)(nil)
	_ encoding.TextMarshaler   = Phase(0)
	_ encoding.TextUnmarshaler = (*Phase)(nil)
)

// IsValid reports whether p is one of the five defined phases.
func (p Phase) IsValid() bool {
	return p >= PhaseNew && p <= PhaseMastered
}

// String returns the phase name ("New", "Learning", ...).
// For invalid values it returns "Phase(n)".
func (p Phase) String() string {
	if p.IsValid() {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("models: invalid phase: %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	v, ok := phaseByName[string(text)]
	if !ok {
		return fmt.Errorf("models: invalid phase: %q", text)
	}
	*p = v
	return nil
}

// MarshalJSON implements json.Marshaler. Phase serializes as a JSON string.
func (p Phase) MarshalJSON() ([]byte, error) {
	text, err := p.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("models: invalid phase: %s", data)
	}
	return p.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer. Phase is stored as its name.
func (p Phase) Value() (driver.Value, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("models: invalid phase: %d", int(p))
	}
	return phaseNames[p], nil
}

// Scan implements sql.Scanner.
func (p *Phase) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return p.UnmarshalText([]byte(v))
	case []byte:
		return p.UnmarshalText(v)
	default:
		return fmt.Errorf("models: cannot scan %T into Phase", src)
	}
}
