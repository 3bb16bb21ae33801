// Package session drives the question-answer-update loop of a study
// session: it snapshots the due queue, selects the next item under the
// session goals, and feeds graded responses through the scheduling
// engine into the store.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/vocabsrs/internal/personalization"
	"github.com/example/vocabsrs/internal/queue"
	"github.com/example/vocabsrs/internal/srs"
	"github.com/example/vocabsrs/internal/store"
	"github.com/example/vocabsrs/pkg/models"
)

// Manager owns active study sessions. It is safe to use one Manager for
// many learners concurrently; each Session itself is single-threaded.
type Manager struct {
	store   store.Store
	builder *queue.Builder
	engine  *srs.Engine
	tracker *personalization.Tracker
	logger  *zap.Logger
	now     func() time.Time
}

// NewManager wires a Manager from its collaborators. A nil logger
// disables logging.
func NewManager(s store.Store, engine *srs.Engine, tracker *personalization.Tracker, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:   s,
		builder: queue.NewBuilder(s),
		engine:  engine,
		tracker: tracker,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the manager's time source. Intended for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Start opens a session for the learner, snapshotting the due queue at
// the current time. If the queue is empty and the goals require at
// least one item, it fails with ErrNoItemsAvailable.
func (m *Manager) Start(ctx context.Context, learnerID string, goals models.SessionGoals) (*Session, error) {
	start := m.now()
	due, err := m.builder.Build(ctx, learnerID, start)
	if err != nil {
		return nil, fmt.Errorf("session: build queue: %w", err)
	}
	if len(due) == 0 && goals.WantsItems() {
		return nil, fmt.Errorf("%w: learner %s is up to date", ErrNoItemsAvailable, learnerID)
	}

	fresh, reviews := queue.Partition(due)
	s := &Session{
		id:        uuid.NewString(),
		learnerID: learnerID,
		startTime: start,
		goals:     goals,
		state:     StateActive,
		pending:   make(map[string]models.MemoryItem, len(due)),
	}
	for _, item := range fresh {
		s.pending[item.ItemID] = item
		s.fresh = append(s.fresh, item.ItemID)
	}
	for _, item := range reviews {
		s.pending[item.ItemID] = item
		s.reviews = append(s.reviews, item.ItemID)
	}

	m.logger.Info("session started",
		zap.String("session_id", s.id),
		zap.String("learner_id", learnerID),
		zap.Int("new_items", len(fresh)),
		zap.Int("reviews", len(reviews)),
	)
	return s, nil
}

// NextItem selects the item to present next, or nil when the session is
// done: both goal targets met, time budget exhausted, or nothing left
// to study. Selection prefers New items while the new-item target is
// unmet, then due reviews while the review target is unmet, then
// whichever pool still has items.
func (m *Manager) NextItem(s *Session) (*models.MemoryItem, error) {
	if s.state != StateActive {
		return nil, fmt.Errorf("%w: session %s is %s", ErrSessionClosed, s.id, s.state)
	}
	if s.goals.TimeBudget > 0 && m.now().Sub(s.startTime) >= s.goals.TimeBudget {
		return nil, nil
	}
	if s.goalsMet() {
		return nil, nil
	}

	if s.newItemsDone < s.goals.NewItemTarget {
		if id, ok := headPending(&s.fresh, s.pending); ok {
			return m.pendingItem(s, id), nil
		}
	}
	if s.reviewsDone < s.goals.ReviewTarget {
		if id, ok := headPending(&s.reviews, s.pending); ok {
			return m.pendingItem(s, id), nil
		}
	}
	// A target is unmet but its pool ran dry: draw from whichever pool
	// still has items.
	if id, ok := headPending(&s.fresh, s.pending); ok {
		return m.pendingItem(s, id), nil
	}
	if id, ok := headPending(&s.reviews, s.pending); ok {
		return m.pendingItem(s, id), nil
	}
	return nil, nil
}

func (m *Manager) pendingItem(s *Session, id string) *models.MemoryItem {
	item := s.pending[id].Clone()
	return &item
}

// SubmitResult grades one answer: it runs the scheduling update,
// refreshes the personalization estimates, persists the record, and
// only then advances the session counters. On any error the session
// state is unchanged and the submission may be retried.
func (m *Manager) SubmitResult(ctx context.Context, s *Session, itemID string, grade srs.Grade, responseTime time.Duration, confidence float64) error {
	if s.state != StateActive {
		return fmt.Errorf("%w: session %s is %s", ErrSessionClosed, s.id, s.state)
	}
	item, ok := s.pending[itemID]
	if !ok {
		return fmt.Errorf("%w: item %s in session %s", ErrUnknownItem, itemID, s.id)
	}

	updated, err := m.engine.Update(item, grade, responseTime, confidence, m.now())
	if err != nil {
		return err
	}
	m.tracker.Apply(&updated)

	// Each submission gets a fresh idempotency key so the store can
	// reject a replay if a timed-out write actually landed.
	stored, err := m.store.Put(ctx, updated, uuid.NewString())
	if err != nil {
		return fmt.Errorf("session: persist result for %s: %w", itemID, err)
	}

	s.recordAnswer(item.Phase, int(grade), responseTime)
	delete(s.pending, itemID)

	m.logger.Debug("result recorded",
		zap.String("session_id", s.id),
		zap.String("item_id", itemID),
		zap.Int("grade", int(grade)),
		zap.String("phase", stored.Phase.String()),
		zap.Int("interval_days", stored.IntervalDays),
		zap.Float64("ease", stored.EaseFactor),
	)
	return nil
}

// Complete closes the session and returns its summary. The session is
// immutable afterwards: further calls fail with ErrSessionClosed.
func (m *Manager) Complete(s *Session) (models.SessionSummary, error) {
	if s.state != StateActive {
		return models.SessionSummary{}, fmt.Errorf("%w: session %s is %s", ErrSessionClosed, s.id, s.state)
	}
	s.state = StateCompleted
	s.endTime = m.now()
	summary := s.summary()

	m.logger.Info("session completed",
		zap.String("session_id", s.id),
		zap.String("learner_id", s.learnerID),
		zap.Int("new_items_done", summary.NewItemsDone),
		zap.Int("reviews_done", summary.ReviewsDone),
		zap.Float64("avg_grade", summary.AvgGrade),
		zap.Duration("avg_response_time", summary.AvgResponseTime),
	)
	return summary, nil
}
