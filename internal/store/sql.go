package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/vocabsrs/pkg/models"
)

// SQL is a Store backed by SQLite or PostgreSQL through sqlx. SQLite
// runs with a single connection since it supports only one writer;
// PostgreSQL serializes same-item writers with row locks. Both rely on
// the version column to reject lost updates.
type SQL struct {
	db     *sqlx.DB
	driver string
}

// OpenSQL connects to the database and bootstraps the schema.
// Supported drivers: "sqlite3" and "postgres".
func OpenSQL(driver, dsn string) (*SQL, error) {
	if driver != "sqlite3" && driver != "postgres" {
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: enable foreign keys: %w", err)
		}
	}
	s := &SQL{db: db, driver: driver}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying connection for collaborating repositories
// (content, stats) that share the same database.
func (s *SQL) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) initSchema() error {
	eventPK := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == "postgres" {
		eventPK = "seq BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS memory_items (
			learner_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			ease_factor REAL NOT NULL,
			interval_days INTEGER NOT NULL,
			repetitions INTEGER NOT NULL,
			last_reviewed_at TIMESTAMP NOT NULL,
			next_review_at TIMESTAMP NOT NULL,
			phase TEXT NOT NULL,
			last_grade INTEGER NOT NULL DEFAULT 0,
			user_difficulty REAL NOT NULL,
			memory_strength REAL NOT NULL,
			version INTEGER NOT NULL,
			last_review_key TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (learner_id, item_id)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS review_events (
			%s,
			learner_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			reviewed_at TIMESTAMP NOT NULL,
			grade INTEGER NOT NULL,
			response_time_ms INTEGER NOT NULL,
			confidence REAL NOT NULL
		)`, eventPK),
		`CREATE INDEX IF NOT EXISTS idx_memory_items_due
			ON memory_items (learner_id, next_review_at)`,
		`CREATE INDEX IF NOT EXISTS idx_review_events_item
			ON review_events (learner_id, item_id, seq)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

type itemRow struct {
	models.MemoryItem
	LastReviewKey string `db:"last_review_key"`
}

type eventRow struct {
	ReviewedAt     time.Time `db:"reviewed_at"`
	Grade          int       `db:"grade"`
	ResponseTimeMS int64     `db:"response_time_ms"`
	Confidence     float64   `db:"confidence"`
}

const itemColumns = `learner_id, item_id, ease_factor, interval_days, repetitions,
	last_reviewed_at, next_review_at, phase, last_grade,
	user_difficulty, memory_strength, version, last_review_key`

// Get returns the record, inserting the default one if absent.
func (s *SQL) Get(ctx context.Context, learnerID, itemID string) (models.MemoryItem, error) {
	var row itemRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind("SELECT "+itemColumns+" FROM memory_items WHERE learner_id = ? AND item_id = ?"),
		learnerID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		item := models.NewMemoryItem(learnerID, itemID, 0, time.Now().UTC())
		item.Version = 1
		if err := s.insert(ctx, item); err != nil {
			return models.MemoryItem{}, err
		}
		return item, nil
	}
	if err != nil {
		return models.MemoryItem{}, fmt.Errorf("store: get %s/%s: %w", learnerID, itemID, err)
	}
	item := row.MemoryItem
	if err := s.loadHistory(ctx, &item); err != nil {
		return models.MemoryItem{}, err
	}
	return item, nil
}

func (s *SQL) insert(ctx context.Context, item models.MemoryItem) error {
	// ON CONFLICT DO NOTHING tolerates a concurrent creator; the row
	// that wins is equivalent.
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO memory_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '')
		ON CONFLICT (learner_id, item_id) DO NOTHING`),
		item.LearnerID, item.ItemID, item.EaseFactor, item.IntervalDays, item.Repetitions,
		item.LastReviewedAt, item.NextReviewAt, item.Phase, item.LastGrade,
		item.UserDifficulty, item.MemoryStrength, item.Version)
	if err != nil {
		return fmt.Errorf("store: insert %s/%s: %w", item.LearnerID, item.ItemID, err)
	}
	return nil
}

// Put persists the record under optimistic concurrency. See Store.Put.
func (s *SQL) Put(ctx context.Context, item models.MemoryItem, reviewKey string) (models.MemoryItem, error) {
	if err := item.Validate(); err != nil {
		return models.MemoryItem{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.MemoryItem{}, fmt.Errorf("store: begin put: %w", err)
	}
	defer tx.Rollback()

	lockQuery := "SELECT version, last_review_key FROM memory_items WHERE learner_id = ? AND item_id = ?"
	if s.driver == "postgres" {
		lockQuery += " FOR UPDATE"
	}
	lockQuery = tx.Rebind(lockQuery)
	var current struct {
		Version       int64  `db:"version"`
		LastReviewKey string `db:"last_review_key"`
	}
	err = tx.GetContext(ctx, &current, lockQuery, item.LearnerID, item.ItemID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if item.Version != 0 {
			return models.MemoryItem{}, fmt.Errorf("%w: item %s/%s does not exist, caller has version %d",
				ErrVersionConflict, item.LearnerID, item.ItemID, item.Version)
		}
	case err != nil:
		return models.MemoryItem{}, fmt.Errorf("store: read version for %s/%s: %w", item.LearnerID, item.ItemID, err)
	default:
		if reviewKey != "" && reviewKey == current.LastReviewKey {
			return models.MemoryItem{}, fmt.Errorf("%w: item %s key %s", ErrDuplicateWrite, item.ItemID, reviewKey)
		}
		if item.Version != current.Version {
			return models.MemoryItem{}, fmt.Errorf("%w: item %s has version %d, caller has %d",
				ErrVersionConflict, item.ItemID, current.Version, item.Version)
		}
	}

	stored := item.Clone()
	stored.Version = item.Version + 1
	key := reviewKey
	if key == "" {
		key = current.LastReviewKey
	}
	if item.Version == 0 {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO memory_items (`+itemColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			stored.LearnerID, stored.ItemID, stored.EaseFactor, stored.IntervalDays, stored.Repetitions,
			stored.LastReviewedAt, stored.NextReviewAt, stored.Phase, stored.LastGrade,
			stored.UserDifficulty, stored.MemoryStrength, stored.Version, key)
	} else {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE memory_items SET
				ease_factor = ?, interval_days = ?, repetitions = ?,
				last_reviewed_at = ?, next_review_at = ?, phase = ?,
				last_grade = ?, user_difficulty = ?, memory_strength = ?,
				version = ?, last_review_key = ?
			WHERE learner_id = ? AND item_id = ? AND version = ?`),
			stored.EaseFactor, stored.IntervalDays, stored.Repetitions,
			stored.LastReviewedAt, stored.NextReviewAt, stored.Phase,
			stored.LastGrade, stored.UserDifficulty, stored.MemoryStrength,
			stored.Version, key,
			stored.LearnerID, stored.ItemID, item.Version)
	}
	if err != nil {
		return models.MemoryItem{}, fmt.Errorf("store: write %s/%s: %w", item.LearnerID, item.ItemID, err)
	}

	// A review write carries exactly one new history event: the last one.
	if reviewKey != "" && len(stored.History) > 0 {
		ev := stored.History[len(stored.History)-1]
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO review_events (learner_id, item_id, reviewed_at, grade, response_time_ms, confidence)
			VALUES (?, ?, ?, ?, ?, ?)`),
			stored.LearnerID, stored.ItemID, ev.Timestamp, ev.Grade, ev.ResponseTime.Milliseconds(), ev.Confidence)
		if err != nil {
			return models.MemoryItem{}, fmt.Errorf("store: append review event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.MemoryItem{}, fmt.Errorf("store: commit put: %w", err)
	}
	return stored, nil
}

// ListDue returns the learner's due set at asOf.
func (s *SQL) ListDue(ctx context.Context, learnerID string, asOf time.Time) ([]models.MemoryItem, error) {
	var rows []itemRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT `+itemColumns+` FROM memory_items
		WHERE learner_id = ? AND (phase = 'New' OR next_review_at <= ?)
		ORDER BY next_review_at ASC, item_id ASC`),
		learnerID, asOf)
	if err != nil {
		return nil, fmt.Errorf("store: list due for %s: %w", learnerID, err)
	}
	items := make([]models.MemoryItem, 0, len(rows))
	for _, row := range rows {
		item := row.MemoryItem
		if err := s.loadHistory(ctx, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ListAll returns every record for the learner. Used by the nightly
// personalization pass and statistics, not part of the core contract.
func (s *SQL) ListAll(ctx context.Context, learnerID string) ([]models.MemoryItem, error) {
	var rows []itemRow
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind("SELECT "+itemColumns+" FROM memory_items WHERE learner_id = ? ORDER BY item_id ASC"),
		learnerID)
	if err != nil {
		return nil, fmt.Errorf("store: list all for %s: %w", learnerID, err)
	}
	items := make([]models.MemoryItem, 0, len(rows))
	for _, row := range rows {
		item := row.MemoryItem
		if err := s.loadHistory(ctx, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Learners returns every learner with at least one record.
func (s *SQL) Learners(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		"SELECT DISTINCT learner_id FROM memory_items ORDER BY learner_id")
	if err != nil {
		return nil, fmt.Errorf("store: list learners: %w", err)
	}
	return ids, nil
}

func (s *SQL) loadHistory(ctx context.Context, item *models.MemoryItem) error {
	var rows []eventRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT reviewed_at, grade, response_time_ms, confidence
		FROM review_events
		WHERE learner_id = ? AND item_id = ?
		ORDER BY seq DESC LIMIT ?`),
		item.LearnerID, item.ItemID, models.HistoryWindow)
	if err != nil {
		return fmt.Errorf("store: load history for %s/%s: %w", item.LearnerID, item.ItemID, err)
	}
	// Rows come newest-first; history is kept oldest-first.
	history := make([]models.ReviewEvent, len(rows))
	for i, row := range rows {
		history[len(rows)-1-i] = models.ReviewEvent{
			Timestamp:    row.ReviewedAt,
			Grade:        row.Grade,
			ResponseTime: time.Duration(row.ResponseTimeMS) * time.Millisecond,
			Confidence:   row.Confidence,
		}
	}
	if len(history) > 0 {
		item.History = history
	}
	return nil
}
