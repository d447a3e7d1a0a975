package state

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Audit5S/internal/actionplan"
	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

func (s *State) Actions(f actionplan.Filter) []store.ActionItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return actionplan.Apply(s.actions, f)
}

func (s *State) Action(id uuid.UUID) (store.ActionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.actionIndex(id)
	if idx < 0 {
		return store.ActionItem{}, ErrNotFound
	}
	return s.actions[idx], nil
}

// UpdateAction applies a manual edit. There are no status transition rules.
func (s *State) UpdateAction(ctx context.Context, id uuid.UUID, p actionplan.Patch) (store.ActionItem, error) {
	if err := p.Validate(); err != nil {
		return store.ActionItem{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.actionIndex(id)
	if idx < 0 {
		return store.ActionItem{}, ErrNotFound
	}
	s.actions[idx] = p.ApplyTo(s.actions[idx])
	if err := s.persist(ctx, store.KeyActions, s.actions); err != nil {
		return s.actions[idx], err
	}
	return s.actions[idx], nil
}

func (s *State) DeleteAction(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.actionIndex(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.actions = append(s.actions[:idx:idx], s.actions[idx+1:]...)
	return s.persist(ctx, store.KeyActions, s.actions)
}

// ClearActions drops the whole action plan and returns how many were removed.
func (s *State) ClearActions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.actions)
	s.actions = []store.ActionItem{}
	return n, s.persist(ctx, store.KeyActions, s.actions)
}

func (s *State) actionIndex(id uuid.UUID) int {
	for i, a := range s.actions {
		if a.ID == id {
			return i
		}
	}
	return -1
}
