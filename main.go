package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/vocabsrs/internal/config"
	"github.com/example/vocabsrs/internal/content"
	"github.com/example/vocabsrs/internal/maintenance"
	"github.com/example/vocabsrs/internal/personalization"
	"github.com/example/vocabsrs/internal/session"
	"github.com/example/vocabsrs/internal/srs"
	"github.com/example/vocabsrs/internal/stats"
	"github.com/example/vocabsrs/internal/store"
	"github.com/example/vocabsrs/pkg/models"
)

func main() {
	importPath := flag.String("import", "", "import words from an .xlsx or .csv file and exit")
	learnerID := flag.String("learner", "default", "learner identifier for the study session")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*importPath, *learnerID, logger); err != nil {
		logger.Fatal("fatal", zap.Error(err))
	}
}

func run(importPath, learnerID string, logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if cfg.DBDriver == "sqlite3" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	sqlStore, err := store.OpenSQL(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer sqlStore.Close()

	words, err := content.NewRepository(sqlStore.DB())
	if err != nil {
		return err
	}

	if importPath != "" {
		importCfg := content.DefaultImportConfig()
		importCfg.FilePath = importPath
		result, err := content.NewImporter(words).Import(ctx, importCfg)
		if err != nil {
			return err
		}
		logger.Info("import finished",
			zap.Int("processed", result.TotalProcessed),
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("skipped", result.Skipped),
			zap.Int("errors", len(result.Errors)),
		)
		for _, msg := range result.Errors {
			logger.Warn("import row failed", zap.String("detail", msg))
		}
		return nil
	}

	engine, err := srs.New(cfg.SRS)
	if err != nil {
		return err
	}
	tracker := personalization.NewTracker(cfg.Personalization)
	statsRepo := stats.NewRepository(sqlStore.DB())

	var notifier maintenance.Notifier
	if cfg.RemindersEnabled {
		notifier = logNotifier{logger: logger}
	}
	jobs := maintenance.New(sqlStore, statsRepo, tracker, notifier, logger)
	jobs.Start()
	defer jobs.Stop()

	if err := seedDeck(ctx, sqlStore, words, learnerID); err != nil {
		return err
	}

	manager := session.NewManager(sqlStore, engine, tracker, logger)
	return studyLoop(ctx, manager, words, statsRepo, learnerID, cfg.Goals)
}

// seedDeck makes sure every imported word has a memory item in the
// learner's deck.
func seedDeck(ctx context.Context, s *store.SQL, words *content.Repository, learnerID string) error {
	all, err := words.List(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(all))
	for i, w := range all {
		ids[i] = w.ID
	}
	_, err = content.NewSeeder(s, words).Seed(ctx, learnerID, ids, time.Now().UTC())
	return err
}

// studyLoop drives one interactive session: present, grade, repeat.
func studyLoop(ctx context.Context, manager *session.Manager, words *content.Repository, statsRepo *stats.Repository, learnerID string, goals models.SessionGoals) error {
	sess, err := manager.Start(ctx, learnerID, goals)
	if errors.Is(err, session.ErrNoItemsAvailable) {
		fmt.Println("Nothing due right now. You're up to date!")
		return nil
	}
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			// Abandoned session: everything submitted so far is
			// already durable.
			return nil
		}
		item, err := manager.NextItem(sess)
		if err != nil {
			return err
		}
		if item == nil {
			break
		}

		word, err := words.Get(ctx, item.ItemID)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s", word.Word)
		if word.Example != "" {
			fmt.Printf("  (%s)", word.Example)
		}
		fmt.Println()
		fmt.Println("Press enter to reveal the translation.")
		if _, err := reader.ReadString('\n'); err != nil {
			return nil
		}
		fmt.Printf("=> %s\n", word.Translation)

		asked := time.Now()
		grade, ok := readGrade(reader)
		if !ok {
			return nil
		}
		responseTime := time.Since(asked)

		err = manager.SubmitResult(ctx, sess, item.ItemID, grade, responseTime, 0.5)
		if err != nil {
			fmt.Printf("Could not record the answer (%v). Please grade it again.\n", err)
			continue
		}
	}

	summary, err := manager.Complete(sess)
	if err != nil {
		return err
	}
	fmt.Printf("\nSession done: %d new, %d reviews, average grade %.1f\n",
		summary.NewItemsDone, summary.ReviewsDone, summary.AvgGrade)

	st, err := statsRepo.ForLearner(ctx, learnerID, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Printf("Deck: %d items, %d still due, %d mastered\n", st.TotalItems, st.DueNow, st.Mastered)
	return nil
}

// readGrade prompts until it gets a 0-5 grade. Returns false on EOF.
func readGrade(reader *bufio.Reader) (srs.Grade, bool) {
	for {
		fmt.Print("How well did you recall it? [0-5]: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && srs.Grade(n).IsValid() {
			return srs.Grade(n), true
		}
		fmt.Println("Enter a number from 0 (blackout) to 5 (perfect).")
	}
}

// logNotifier writes reminders to the log. A real deployment would
// plug in a push or chat transport here.
type logNotifier struct {
	logger *zap.Logger
}

func (n logNotifier) SendReminder(_ context.Context, learnerID string, dueCount int) error {
	n.logger.Info("reviews due",
		zap.String("learner_id", learnerID),
		zap.Int("due_count", dueCount),
	)
	return nil
}
