// Package state owns the in-memory audit records, action items and
// settings, and mirrors each collection to a store.Backend after every
// mutation.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAuditorRequired   = errors.New("auditor name required")
	ErrIncompleteAnswers = errors.New("not every question has been answered")
	ErrInvalidInput      = errors.New("invalid input")
)

// IncompleteError reports how many questions were answered when a save was
// refused for lack of confirmation.
type IncompleteError struct {
	Answered int
	Total    int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%d of %d questions answered", e.Answered, e.Total)
}

func (e *IncompleteError) Is(target error) bool { return target == ErrIncompleteAnswers }

type Options struct {
	Now      func() time.Time
	NewID    func() uuid.UUID
	Location *time.Location
}

type State struct {
	backend store.Backend
	logger  *slog.Logger
	now     func() time.Time
	newID   func() uuid.UUID
	loc     *time.Location

	mu          sync.RWMutex
	records     []store.AuditRecord
	actions     []store.ActionItem
	config      store.AppConfig
	lastAuditor string
}

// Load reads every collection once. A blob that fails to decode is logged
// and replaced by its default; a backend error aborts the load.
func Load(ctx context.Context, backend store.Backend, logger *slog.Logger, opts Options) (*State, error) {
	s := &State{
		backend: backend,
		logger:  logger,
		now:     opts.Now,
		newID:   opts.NewID,
		loc:     opts.Location,
		records: []store.AuditRecord{},
		actions: []store.ActionItem{},
		config:  store.DefaultConfig(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.New
	}
	if s.loc == nil {
		s.loc = time.Local
	}

	records, ok, err := loadBlob[[]store.AuditRecord](ctx, s, store.KeyRecords)
	if err != nil {
		return nil, err
	}
	if ok && records != nil {
		s.records = records
	}

	actions, ok, err := loadBlob[[]store.ActionItem](ctx, s, store.KeyActions)
	if err != nil {
		return nil, err
	}
	if ok && actions != nil {
		s.actions = actions
	}

	cfg, ok, err := loadBlob[store.AppConfig](ctx, s, store.KeyConfig)
	if err != nil {
		return nil, err
	}
	if ok {
		merged, added := store.MergeDefaultQuestions(cfg)
		if added > 0 {
			logger.Info("merged default questions into saved config", "added", added)
		}
		s.config = merged
	}

	raw, err := backend.Get(ctx, store.KeyLastAuditor)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", store.KeyLastAuditor, err)
	}
	s.lastAuditor = string(raw)

	logger.Info("state loaded",
		"records", len(s.records),
		"actions", len(s.actions),
		"questions", len(s.config.Questions),
	)
	return s, nil
}

func loadBlob[T any](ctx context.Context, s *State, key string) (T, bool, error) {
	var v T
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		return v, false, fmt.Errorf("read %s: %w", key, err)
	}
	if raw == nil {
		return v, false, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("ignoring malformed persisted blob", "key", key, "error", err)
		var zero T
		return zero, false, nil
	}
	return v, true, nil
}

// persist writes one collection. Callers hold s.mu.
func (s *State) persist(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// Now is the clock used for timestamps and overdue checks.
func (s *State) Now() time.Time { return s.now() }

// Today is midnight of the current day in the configured location.
func (s *State) Today() time.Time {
	return dayOf(s.now(), s.loc)
}

// ParseDate parses a YYYY-MM-DD date as midnight in the configured location.
func (s *State) ParseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", v, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return t, nil
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
