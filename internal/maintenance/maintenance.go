// Package maintenance runs the background jobs around the scheduling
// core: due-review reminders and the nightly personalization pass.
package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/vocabsrs/internal/personalization"
	"github.com/example/vocabsrs/internal/stats"
	"github.com/example/vocabsrs/internal/store"
)

// Notifier delivers due-review reminders to learners. The transport is
// up to the enclosing application.
type Notifier interface {
	SendReminder(ctx context.Context, learnerID string, dueCount int) error
}

// Runner owns the scheduled jobs.
type Runner struct {
	scheduler *gocron.Scheduler
	store     *store.SQL
	stats     *stats.Repository
	tracker   *personalization.Tracker
	notifier  Notifier
	logger    *zap.Logger
}

// New creates a Runner. The notifier may be nil, which disables
// reminders; the nightly pass always runs.
func New(sqlStore *store.SQL, statsRepo *stats.Repository, tracker *personalization.Tracker, notifier Notifier, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     sqlStore,
		stats:     statsRepo,
		tracker:   tracker,
		notifier:  notifier,
		logger:    logger,
	}
}

// Start schedules the jobs and runs them in the background.
func (r *Runner) Start() {
	if r.notifier != nil {
		r.scheduler.Every(1).Hour().Do(r.sendReminders)
	}
	r.scheduler.Every(1).Day().At("03:30").Do(r.rederiveMemoryStrength)
	r.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs.
func (r *Runner) Stop() {
	r.scheduler.Stop()
}

func (r *Runner) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	learners, err := r.store.Learners(ctx)
	if err != nil {
		r.logger.Error("reminder pass: list learners", zap.Error(err))
		return
	}
	now := time.Now().UTC()
	for _, learnerID := range learners {
		st, err := r.stats.ForLearner(ctx, learnerID, now)
		if err != nil {
			r.logger.Error("reminder pass: learner stats", zap.String("learner_id", learnerID), zap.Error(err))
			continue
		}
		if st.DueNow == 0 {
			continue
		}
		if err := r.notifier.SendReminder(ctx, learnerID, st.DueNow); err != nil {
			r.logger.Error("reminder pass: send", zap.String("learner_id", learnerID), zap.Error(err))
		}
	}
}

// rederiveMemoryStrength recomputes memory strength from the stored
// review history for every item. Items changed underfoot by an active
// session are skipped and picked up the next night.
func (r *Runner) rederiveMemoryStrength() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	learners, err := r.store.Learners(ctx)
	if err != nil {
		r.logger.Error("nightly pass: list learners", zap.Error(err))
		return
	}
	var updated, skipped int
	for _, learnerID := range learners {
		items, err := r.store.ListAll(ctx, learnerID)
		if err != nil {
			r.logger.Error("nightly pass: list items", zap.String("learner_id", learnerID), zap.Error(err))
			continue
		}
		for _, item := range items {
			before := item.MemoryStrength
			r.tracker.Rederive(&item)
			if item.MemoryStrength == before {
				continue
			}
			if _, err := r.store.Put(ctx, item, ""); err != nil {
				if errors.Is(err, store.ErrVersionConflict) {
					skipped++
					continue
				}
				r.logger.Error("nightly pass: persist",
					zap.String("learner_id", learnerID),
					zap.String("item_id", item.ItemID),
					zap.Error(err))
				continue
			}
			updated++
		}
	}
	r.logger.Info("nightly personalization pass done",
		zap.Int("updated", updated),
		zap.Int("skipped", skipped),
	)
}
