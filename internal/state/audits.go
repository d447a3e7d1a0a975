package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Audit5S/internal/actionplan"
	"github.com/MikeSquared-Agency/Audit5S/internal/scoring"
	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

// AuditInput is the submitted audit form.
type AuditInput struct {
	Area              string
	Auditor           string
	Responsable       string
	Date              time.Time // zero means today for new audits, unchanged for edits
	Answers           []store.Answer
	ConfirmIncomplete bool
}

// Draft holds the defaults for a blank audit form.
type Draft struct {
	Area        string           `json:"area"`
	Responsable string           `json:"responsable"`
	Auditor     string           `json:"auditor"`
	Date        string           `json:"date"`
	Questions   []store.Question `json:"questions"`
	Areas       []string         `json:"areas"`
}

func (s *State) Draft() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := Draft{
		Auditor:   s.lastAuditor,
		Date:      s.Today().Format("2006-01-02"),
		Questions: append([]store.Question{}, s.config.Questions...),
		Areas:     append([]string{}, s.config.Areas...),
	}
	if len(s.config.Areas) > 0 {
		d.Area = s.config.Areas[0]
		d.Responsable = s.responsableFor(d.Area)
	}
	return d
}

// ResponsableFor returns the person mapped to area, falling back to the
// first configured responsable.
func (s *State) ResponsableFor(area string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responsableFor(area)
}

func (s *State) responsableFor(area string) string {
	for _, r := range s.config.Responsables {
		if r.Area == area {
			return r.Name
		}
	}
	if len(s.config.Responsables) > 0 {
		return s.config.Responsables[0].Name
	}
	return ""
}

// normalizeAnswers validates ratings and keeps the last rating given for
// each question, in first-seen order.
func normalizeAnswers(in []store.Answer) ([]store.Answer, error) {
	index := make(map[int]int, len(in))
	out := make([]store.Answer, 0, len(in))
	for _, a := range in {
		if !a.Rating.Valid() {
			return nil, fmt.Errorf("%w: rating %q for question %d", ErrInvalidInput, a.Rating, a.QuestionID)
		}
		if i, ok := index[a.QuestionID]; ok {
			out[i].Rating = a.Rating
			continue
		}
		index[a.QuestionID] = len(out)
		out = append(out, a)
	}
	return out, nil
}

func (s *State) checkForm(in AuditInput) (AuditInput, error) {
	in.Auditor = strings.TrimSpace(in.Auditor)
	if in.Auditor == "" {
		return in, ErrAuditorRequired
	}
	answers, err := normalizeAnswers(in.Answers)
	if err != nil {
		return in, err
	}
	in.Answers = answers
	total := len(s.config.Questions)
	if answered := s.answeredCount(answers); answered < total && !in.ConfirmIncomplete {
		return in, &IncompleteError{Answered: answered, Total: total}
	}
	return in, nil
}

// answeredCount counts answers to configured questions only.
func (s *State) answeredCount(answers []store.Answer) int {
	known := make(map[int]bool, len(s.config.Questions))
	for _, q := range s.config.Questions {
		known[q.ID] = true
	}
	n := 0
	for _, a := range answers {
		if known[a.QuestionID] {
			n++
		}
	}
	return n
}

// CreateAudit saves a new audit and the actions derived from its findings.
// If the records write fails nothing changes in memory. Records are persisted
// before actions; the two writes are not atomic.
func (s *State) CreateAudit(ctx context.Context, in AuditInput) (store.AuditRecord, []store.ActionItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, err := s.checkForm(in)
	if err != nil {
		return store.AuditRecord{}, nil, err
	}

	area := strings.TrimSpace(in.Area)
	if area == "" && len(s.config.Areas) > 0 {
		area = s.config.Areas[0]
	}
	responsable := strings.TrimSpace(in.Responsable)
	if responsable == "" {
		responsable = s.responsableFor(area)
	}
	date := s.Today()
	if !in.Date.IsZero() {
		date = dayOf(in.Date, s.loc)
	}

	rec := store.AuditRecord{
		ID:          s.newID(),
		Area:        area,
		Auditor:     in.Auditor,
		Responsable: responsable,
		Date:        date,
		Answers:     in.Answers,
		Score:       scoring.Score(in.Answers),
	}
	derived := actionplan.Derive(rec, s.config.Questions, s.now(), s.newID)

	records := append([]store.AuditRecord{rec}, s.records...)
	if err := s.persist(ctx, store.KeyRecords, records); err != nil {
		return store.AuditRecord{}, nil, err
	}
	s.records = records
	if len(derived) > 0 {
		s.actions = append(append([]store.ActionItem{}, derived...), s.actions...)
		if err := s.persist(ctx, store.KeyActions, s.actions); err != nil {
			return rec, derived, err
		}
	}
	if s.lastAuditor != in.Auditor {
		s.lastAuditor = in.Auditor
		if err := s.backend.Put(ctx, store.KeyLastAuditor, []byte(in.Auditor)); err != nil {
			s.logger.Warn("failed to remember auditor name", "error", err)
		}
	}

	return cloneRecord(rec), derived, nil
}

// UpdateAudit replaces an existing audit in place. It never creates actions.
func (s *State) UpdateAudit(ctx context.Context, id uuid.UUID, in AuditInput) (store.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.recordIndex(id)
	if idx < 0 {
		return store.AuditRecord{}, ErrNotFound
	}
	in, err := s.checkForm(in)
	if err != nil {
		return store.AuditRecord{}, err
	}

	prev := s.records[idx]
	rec := prev
	rec.Auditor = in.Auditor
	if area := strings.TrimSpace(in.Area); area != "" {
		rec.Area = area
	}
	switch responsable := strings.TrimSpace(in.Responsable); {
	case responsable != "":
		rec.Responsable = responsable
	case rec.Area != prev.Area || rec.Responsable == "":
		rec.Responsable = s.responsableFor(rec.Area)
	}
	if !in.Date.IsZero() {
		rec.Date = dayOf(in.Date, s.loc)
	}
	rec.Answers = in.Answers
	rec.Score = scoring.Score(in.Answers)

	s.records[idx] = rec
	if err := s.persist(ctx, store.KeyRecords, s.records); err != nil {
		return rec, err
	}
	return cloneRecord(rec), nil
}

// DeleteAudit removes an audit. Actions it generated are kept.
func (s *State) DeleteAudit(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.recordIndex(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
	return s.persist(ctx, store.KeyRecords, s.records)
}

// Audits lists records newest first; a non-empty area filters by area.
func (s *State) Audits(area string) []store.AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.AuditRecord, 0, len(s.records))
	for _, r := range s.records {
		if area != "" && r.Area != area {
			continue
		}
		out = append(out, cloneRecord(r))
	}
	return out
}

func (s *State) Audit(id uuid.UUID) (store.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.recordIndex(id)
	if idx < 0 {
		return store.AuditRecord{}, ErrNotFound
	}
	return cloneRecord(s.records[idx]), nil
}

func (s *State) recordIndex(id uuid.UUID) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func cloneRecord(r store.AuditRecord) store.AuditRecord {
	r.Answers = append([]store.Answer{}, r.Answers...)
	return r
}
