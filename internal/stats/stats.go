// Package stats reports learner progress aggregates over the memory
// item store's tables.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// LearnerStats summarizes one learner's deck.
type LearnerStats struct {
	TotalItems int     `db:"total_items"`
	DueNow     int     `db:"due_now"`
	Mastered   int     `db:"mastered"`
	AvgEase    float64 `db:"avg_ease"`
}

// Repository computes statistics directly in SQL.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a statistics repository over the store's database.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ForLearner returns the learner's aggregates at asOf.
func (r *Repository) ForLearner(ctx context.Context, learnerID string, asOf time.Time) (LearnerStats, error) {
	var out LearnerStats
	err := r.db.GetContext(ctx, &out, r.db.Rebind(`
		SELECT
			COUNT(*) AS total_items,
			COALESCE(SUM(CASE WHEN phase = 'New' OR next_review_at <= ? THEN 1 ELSE 0 END), 0) AS due_now,
			COALESCE(SUM(CASE WHEN phase = 'Mastered' THEN 1 ELSE 0 END), 0) AS mastered,
			COALESCE(AVG(ease_factor), 2.5) AS avg_ease
		FROM memory_items
		WHERE learner_id = ?`),
		asOf, learnerID)
	if err != nil {
		return LearnerStats{}, fmt.Errorf("stats: for learner %s: %w", learnerID, err)
	}
	return out, nil
}
