package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/vocabsrs/pkg/models"
)

// Memory is an in-process Store backed by a map. It is safe for
// concurrent use: the outer mutex guards the map, a per-entry mutex
// serializes writers of the same item.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	mu            sync.Mutex
	item          models.MemoryItem
	lastReviewKey string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memoryEntry)}
}

func itemKey(learnerID, itemID string) string {
	return learnerID + "/" + itemID
}

func (s *Memory) entry(learnerID, itemID string) (*memoryEntry, bool) {
	s.mu.RLock()
	e, ok := s.entries[itemKey(learnerID, itemID)]
	s.mu.RUnlock()
	return e, ok
}

// Get returns the record, creating and storing the default one if absent.
func (s *Memory) Get(ctx context.Context, learnerID, itemID string) (models.MemoryItem, error) {
	if err := ctx.Err(); err != nil {
		return models.MemoryItem{}, err
	}
	if e, ok := s.entry(learnerID, itemID); ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.item.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := itemKey(learnerID, itemID)
	if e, ok := s.entries[key]; ok {
		// Lost the race to another creator.
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.item.Clone(), nil
	}
	item := models.NewMemoryItem(learnerID, itemID, 0, time.Now())
	item.Version = 1
	s.entries[key] = &memoryEntry{item: item}
	return item.Clone(), nil
}

// Put stores the record if its version matches the stored one.
func (s *Memory) Put(ctx context.Context, item models.MemoryItem, reviewKey string) (models.MemoryItem, error) {
	if err := ctx.Err(); err != nil {
		return models.MemoryItem{}, err
	}
	if err := item.Validate(); err != nil {
		return models.MemoryItem{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	e, ok := s.entry(item.LearnerID, item.ItemID)
	if !ok {
		s.mu.Lock()
		key := itemKey(item.LearnerID, item.ItemID)
		e, ok = s.entries[key]
		if !ok {
			// First write for this item. A rejected write must leave no
			// trace, so the entry is only created once the version check
			// passes.
			if item.Version != 0 {
				s.mu.Unlock()
				return models.MemoryItem{}, fmt.Errorf("%w: item %s does not exist, caller has version %d",
					ErrVersionConflict, item.ItemID, item.Version)
			}
			stored := item.Clone()
			stored.Version = 1
			s.entries[key] = &memoryEntry{item: stored, lastReviewKey: reviewKey}
			s.mu.Unlock()
			return stored.Clone(), nil
		}
		s.mu.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if reviewKey != "" && reviewKey == e.lastReviewKey {
		return models.MemoryItem{}, fmt.Errorf("%w: item %s key %s", ErrDuplicateWrite, item.ItemID, reviewKey)
	}
	current := e.item.Version
	if item.Version != current {
		return models.MemoryItem{}, fmt.Errorf("%w: item %s has version %d, caller has %d",
			ErrVersionConflict, item.ItemID, current, item.Version)
	}
	stored := item.Clone()
	stored.Version = current + 1
	e.item = stored
	if reviewKey != "" {
		e.lastReviewKey = reviewKey
	}
	return stored.Clone(), nil
}

// ListDue returns the learner's due set at asOf, ordered by next review
// time for determinism. Ordering carries no meaning for callers.
func (s *Memory) ListDue(ctx context.Context, learnerID string, asOf time.Time) ([]models.MemoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	entries := make([]*memoryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	var due []models.MemoryItem
	for _, e := range entries {
		e.mu.Lock()
		if e.item.LearnerID == learnerID && e.item.IsDue(asOf) {
			due = append(due, e.item.Clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReviewAt.Equal(due[j].NextReviewAt) {
			return due[i].NextReviewAt.Before(due[j].NextReviewAt)
		}
		return due[i].ItemID < due[j].ItemID
	})
	return due, nil
}
