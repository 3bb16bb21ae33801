package session

import (
	"time"

	"github.com/example/vocabsrs/pkg/models"
)

// State is the lifecycle stage of a study session.
type State int

const (
	StateCreated State = iota + 1
	StateActive
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateActive:
		return "Active"
	case StateCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Session is one active study interaction for one learner. It is owned
// by the Manager that started it and must not be shared across
// goroutines; a learner answers one question at a time.
type Session struct {
	id        string
	learnerID string
	startTime time.Time
	endTime   time.Time
	goals     models.SessionGoals
	state     State

	newItemsDone int
	reviewsDone  int

	answered    int
	gradeSum    float64
	responseSum time.Duration

	// Snapshot of the due queue at start time. Items move out of
	// pending as results are submitted.
	pending map[string]models.MemoryItem
	fresh   []string // pending New-phase item IDs, selection order
	reviews []string // pending review item IDs, selection order
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// LearnerID returns the learner this session belongs to.
func (s *Session) LearnerID() string { return s.learnerID }

// State returns the lifecycle stage.
func (s *Session) State() State { return s.state }

// Goals returns the session goals.
func (s *Session) Goals() models.SessionGoals { return s.goals }

// StartTime returns when the session started.
func (s *Session) StartTime() time.Time { return s.startTime }

// NewItemsDone returns the number of New-phase items answered.
func (s *Session) NewItemsDone() int { return s.newItemsDone }

// ReviewsDone returns the number of review items answered.
func (s *Session) ReviewsDone() int { return s.reviewsDone }

// Remaining returns the number of snapshot items not yet answered.
func (s *Session) Remaining() int { return len(s.pending) }

func (s *Session) goalsMet() bool {
	return s.newItemsDone >= s.goals.NewItemTarget && s.reviewsDone >= s.goals.ReviewTarget
}

// headPending returns the first id in ids that is still pending,
// dropping answered ones from the front as it goes.
func headPending(ids *[]string, pending map[string]models.MemoryItem) (string, bool) {
	for len(*ids) > 0 {
		id := (*ids)[0]
		if _, ok := pending[id]; ok {
			return id, true
		}
		*ids = (*ids)[1:]
	}
	return "", false
}

func (s *Session) recordAnswer(preUpdatePhase models.Phase, grade int, responseTime time.Duration) {
	if preUpdatePhase == models.PhaseNew {
		s.newItemsDone++
	} else {
		s.reviewsDone++
	}
	s.answered++
	s.gradeSum += float64(grade)
	s.responseSum += responseTime
}

// summary computes the final aggregates as simple cumulative averages
// over all answered items.
func (s *Session) summary() models.SessionSummary {
	out := models.SessionSummary{
		SessionID:    s.id,
		LearnerID:    s.learnerID,
		StartTime:    s.startTime,
		EndTime:      s.endTime,
		NewItemsDone: s.newItemsDone,
		ReviewsDone:  s.reviewsDone,
	}
	if s.answered > 0 {
		out.AvgGrade = s.gradeSum / float64(s.answered)
		out.AvgResponseTime = s.responseSum / time.Duration(s.answered)
	}
	return out
}
