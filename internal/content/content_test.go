package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabsrs/internal/store"
	"github.com/example/vocabsrs/pkg/models"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", filepath.Join(t.TempDir(), "content.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db)
	require.NoError(t, err)
	return repo
}

// --- Repository ---

func TestUpsertCreatesThenUpdates(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	word := models.Word{Word: "serendipity", Translation: "lucky find", Topic: "abstract", Difficulty: 4}
	created, isNew, err := repo.Upsert(ctx, word)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEmpty(t, created.ID)

	word.Translation = "happy accident"
	updated, isNew, err := repo.Upsert(ctx, word)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, updated.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "happy accident", got.Translation)
}

func TestItemMetadata(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	created, _, err := repo.Upsert(ctx, models.Word{Word: "gleich", Translation: "same", Difficulty: 2})
	require.NoError(t, err)

	meta, err := repo.ItemMetadata(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, meta.DifficultyHint)
	assert.Equal(t, "gleich", meta.ContentRef)

	_, err = repo.ItemMetadata(ctx, "nope")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

// --- Importer ---

func TestImportCSV(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "words.csv")
	csvData := "word,translation,example,topic,difficulty,pronunciation\n" +
		"apple,яблоко,An apple a day,food,1,\n" +
		"ubiquitous,вездесущий,,academic,5,juːˈbɪkwɪtəs\n" +
		",missing word,,,2,\n" +
		"oak,дуб,,nature,banana,\n"
	require.NoError(t, os.WriteFile(path, []byte(csvData), 0o644))

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	result, err := NewImporter(repo).Import(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1, "bad difficulty is reported, row still imported")

	words, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, words, 3)
}

func TestImportCSVReimportUpdates(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "words.csv")
	require.NoError(t, os.WriteFile(path,
		[]byte("word,translation\napple,яблоко\n"), 0o644))

	cfg := DefaultImportConfig()
	cfg.FilePath = path

	im := NewImporter(repo)
	first, err := im.Import(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := im.Import(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)
}

// --- Seeder ---

func TestSeedCreatesItemsOnce(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	provider := Static{
		"w1": {DifficultyHint: 5, ContentRef: "hard word"},
		"w2": {DifficultyHint: 1, ContentRef: "easy word"},
	}

	seeder := NewSeeder(mem, provider)
	created, err := seeder.Seed(ctx, "learner-1", []string{"w1", "w2"}, t0)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	item, err := mem.Get(ctx, "learner-1", "w1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, item.UserDifficulty, 1e-9)
	assert.Equal(t, models.PhaseNew, item.Phase)

	// Re-seeding skips items already in the deck.
	created, err = seeder.Seed(ctx, "learner-1", []string{"w1", "w2"}, t0)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestSeedUnknownItemFails(t *testing.T) {
	seeder := NewSeeder(store.NewMemory(), Static{})
	_, err := seeder.Seed(context.Background(), "learner-1", []string{"ghost"}, t0)
	assert.ErrorIs(t, err, ErrItemNotFound)
}
