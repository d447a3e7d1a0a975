package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

func (s *State) Config() store.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

// ReplaceConfig swaps the whole configuration after validating it.
func (s *State) ReplaceConfig(ctx context.Context, cfg store.AppConfig) (store.AppConfig, error) {
	if err := validateConfig(cfg); err != nil {
		return store.AppConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitConfig(ctx, cfg.Clone())
}

func validateConfig(cfg store.AppConfig) error {
	ids := make(map[int]bool, len(cfg.Questions))
	for _, q := range cfg.Questions {
		if q.ID <= 0 {
			return fmt.Errorf("%w: question id must be positive", ErrInvalidInput)
		}
		if ids[q.ID] {
			return fmt.Errorf("%w: duplicate question id %d", ErrInvalidInput, q.ID)
		}
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidInput, q.ID)
		}
		ids[q.ID] = true
	}
	for _, a := range cfg.Areas {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: blank area name", ErrInvalidInput)
		}
	}
	for _, r := range cfg.Responsables {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("%w: blank responsable name", ErrInvalidInput)
		}
	}
	return nil
}

func (s *State) commitConfig(ctx context.Context, cfg store.AppConfig) (store.AppConfig, error) {
	s.config = cfg
	if err := s.persist(ctx, store.KeyConfig, s.config); err != nil {
		return s.config.Clone(), err
	}
	return s.config.Clone(), nil
}

// normalizeName trims and upper-cases a settings entry.
func normalizeName(v string) (string, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return v, nil
}

func (s *State) AddArea(ctx context.Context, name string) (store.AppConfig, error) {
	name, err := normalizeName(name)
	if err != nil {
		return store.AppConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.config.Areas {
		if a == name {
			return store.AppConfig{}, fmt.Errorf("%w: area %s already exists", ErrInvalidInput, name)
		}
	}
	cfg := s.config.Clone()
	cfg.Areas = append(cfg.Areas, name)
	return s.commitConfig(ctx, cfg)
}

func (s *State) RemoveArea(ctx context.Context, name string) (store.AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.config.Clone()
	kept := cfg.Areas[:0]
	for _, a := range cfg.Areas {
		if a != name {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(cfg.Areas) {
		return store.AppConfig{}, ErrNotFound
	}
	cfg.Areas = kept
	return s.commitConfig(ctx, cfg)
}

func (s *State) AddResponsable(ctx context.Context, name, area string) (store.AppConfig, error) {
	name, err := normalizeName(name)
	if err != nil {
		return store.AppConfig{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.config.Clone()
	cfg.Responsables = append(cfg.Responsables, store.Responsable{
		Name: name,
		Area: strings.ToUpper(strings.TrimSpace(area)),
	})
	return s.commitConfig(ctx, cfg)
}

// RemoveResponsable removes every entry with the given name.
func (s *State) RemoveResponsable(ctx context.Context, name string) (store.AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.config.Clone()
	kept := cfg.Responsables[:0]
	for _, r := range cfg.Responsables {
		if r.Name != name {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(cfg.Responsables) {
		return store.AppConfig{}, ErrNotFound
	}
	cfg.Responsables = kept
	return s.commitConfig(ctx, cfg)
}

// AddQuestion appends a question numbered one past the current maximum.
func (s *State) AddQuestion(ctx context.Context, text string) (store.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return store.Question{}, fmt.Errorf("%w: question text is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := 1
	for _, q := range s.config.Questions {
		if q.ID >= next {
			next = q.ID + 1
		}
	}
	q := store.Question{ID: next, Text: text}
	cfg := s.config.Clone()
	cfg.Questions = append(cfg.Questions, q)
	_, err := s.commitConfig(ctx, cfg)
	return q, err
}

func (s *State) RemoveQuestion(ctx context.Context, id int) (store.AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.config.Clone()
	kept := cfg.Questions[:0]
	for _, q := range cfg.Questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(cfg.Questions) {
		return store.AppConfig{}, ErrNotFound
	}
	cfg.Questions = kept
	return s.commitConfig(ctx, cfg)
}
