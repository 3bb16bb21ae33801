package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/vocabsrs/pkg/models"
)

// Repository stores vocabulary words in the same database as the memory
// item store and implements Provider over them.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates the repository and bootstraps its schema.
func NewRepository(db *sqlx.DB) (*Repository, error) {
	r := &Repository{db: db}
	if err := r.initSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) initSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS words (
			id TEXT PRIMARY KEY,
			word TEXT NOT NULL,
			translation TEXT NOT NULL,
			example TEXT NOT NULL DEFAULT '',
			topic TEXT NOT NULL DEFAULT '',
			difficulty INTEGER NOT NULL DEFAULT 1,
			pronunciation TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE (word, topic)
		)`)
	if err != nil {
		return fmt.Errorf("content: init schema: %w", err)
	}
	return nil
}

// ItemMetadata implements Provider.
func (r *Repository) ItemMetadata(ctx context.Context, itemID string) (Metadata, error) {
	var row struct {
		Difficulty int    `db:"difficulty"`
		Word       string `db:"word"`
	}
	err := r.db.GetContext(ctx, &row, r.db.Rebind("SELECT difficulty, word FROM words WHERE id = ?"), itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return Metadata{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("content: item metadata for %s: %w", itemID, err)
	}
	return Metadata{DifficultyHint: row.Difficulty, ContentRef: row.Word}, nil
}

// Get returns the full word record for display.
func (r *Repository) Get(ctx context.Context, itemID string) (models.Word, error) {
	var word models.Word
	err := r.db.GetContext(ctx, &word, r.db.Rebind("SELECT * FROM words WHERE id = ?"), itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Word{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if err != nil {
		return models.Word{}, fmt.Errorf("content: get word %s: %w", itemID, err)
	}
	return word, nil
}

// List returns all words, ordered by topic then word.
func (r *Repository) List(ctx context.Context) ([]models.Word, error) {
	var words []models.Word
	err := r.db.SelectContext(ctx, &words, "SELECT * FROM words ORDER BY topic, word")
	if err != nil {
		return nil, fmt.Errorf("content: list words: %w", err)
	}
	return words, nil
}

// Upsert inserts the word or updates the existing record with the same
// (word, topic). It returns the stored record and whether it was newly
// created.
func (r *Repository) Upsert(ctx context.Context, word models.Word) (models.Word, bool, error) {
	now := time.Now().UTC()
	var existing models.Word
	err := r.db.GetContext(ctx, &existing,
		r.db.Rebind("SELECT * FROM words WHERE word = ? AND topic = ?"), word.Word, word.Topic)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		word.ID = uuid.NewString()
		word.CreatedAt = now
		word.UpdatedAt = now
		_, err = r.db.ExecContext(ctx, r.db.Rebind(`
			INSERT INTO words (id, word, translation, example, topic, difficulty, pronunciation, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			word.ID, word.Word, word.Translation, word.Example, word.Topic,
			word.Difficulty, word.Pronunciation, word.CreatedAt, word.UpdatedAt)
		if err != nil {
			return models.Word{}, false, fmt.Errorf("content: insert word %q: %w", word.Word, err)
		}
		return word, true, nil
	case err != nil:
		return models.Word{}, false, fmt.Errorf("content: find word %q: %w", word.Word, err)
	default:
		word.ID = existing.ID
		word.CreatedAt = existing.CreatedAt
		word.UpdatedAt = now
		_, err = r.db.ExecContext(ctx, r.db.Rebind(`
			UPDATE words SET translation = ?, example = ?, difficulty = ?, pronunciation = ?, updated_at = ?
			WHERE id = ?`),
			word.Translation, word.Example, word.Difficulty, word.Pronunciation, word.UpdatedAt, word.ID)
		if err != nil {
			return models.Word{}, false, fmt.Errorf("content: update word %q: %w", word.Word, err)
		}
		return word, false, nil
	}
}
