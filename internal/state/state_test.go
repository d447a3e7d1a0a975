package state

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Audit5S/internal/actionplan"
	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

var fixedNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testQuestions() []store.Question {
	return []store.Question{
		{ID: 1, Text: "Q1"}, {ID: 2, Text: "Q2"}, {ID: 3, Text: "Q3"}, {ID: 4, Text: "Q4"}, {ID: 5, Text: "Q5"},
	}
}

func newTestState(t *testing.T, backend store.Backend) *State {
	t.Helper()
	if backend == nil {
		backend = store.NewMemoryBackend()
	}
	s, err := Load(context.Background(), backend, discardLogger(), Options{
		Now:      func() time.Time { return fixedNow },
		Location: time.UTC,
	})
	require.NoError(t, err)
	return s
}

// newFiveQuestionState replaces the default config with five questions. A
// reload merges the other default questions back in.
func newFiveQuestionState(t *testing.T, backend store.Backend) *State {
	t.Helper()
	s := newTestState(t, backend)
	cfg := s.Config()
	cfg.Questions = testQuestions()
	_, err := s.ReplaceConfig(context.Background(), cfg)
	require.NoError(t, err)
	return s
}

func fullAnswers(ratings ...store.Rating) []store.Answer {
	out := make([]store.Answer, len(ratings))
	for i, r := range ratings {
		out[i] = store.Answer{QuestionID: i + 1, Rating: r}
	}
	return out
}

type failingBackend struct {
	*store.MemoryBackend
	getErr error
	putErr error
}

func (f *failingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryBackend.Get(ctx, key)
}

func (f *failingBackend) Put(ctx context.Context, key string, value []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryBackend.Put(ctx, key, value)
}

func TestLoad_EmptyBackendUsesDefaults(t *testing.T) {
	s := newTestState(t, nil)

	assert.Empty(t, s.Audits(""))
	assert.Empty(t, s.Actions(actionplan.Filter{}))
	assert.Equal(t, store.DefaultConfig(), s.Config())
}

func TestLoad_MalformedBlobsFallBackPerCollection(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	good := []store.ActionItem{{ID: uuid.New(), Status: store.ActionPending}}
	raw, _ := json.Marshal(good)
	require.NoError(t, b.Put(ctx, store.KeyRecords, []byte(`{not json`)))
	require.NoError(t, b.Put(ctx, store.KeyActions, raw))
	require.NoError(t, b.Put(ctx, store.KeyConfig, []byte(`[]`)))

	s := newTestState(t, b)

	assert.Empty(t, s.Audits(""))
	assert.Len(t, s.Actions(actionplan.Filter{}), 1)
	assert.Equal(t, store.DefaultConfig(), s.Config())
}

func TestLoad_MergesMissingDefaultQuestions(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	saved := store.AppConfig{
		Questions: []store.Question{{ID: 1, Text: "edited"}},
		Areas:     []string{"TALLER"},
	}
	raw, _ := json.Marshal(saved)
	require.NoError(t, b.Put(ctx, store.KeyConfig, raw))

	s := newTestState(t, b)

	cfg := s.Config()
	assert.Len(t, cfg.Questions, len(store.DefaultQuestions))
	assert.Equal(t, "edited", cfg.Questions[0].Text)
	assert.Equal(t, []string{"TALLER"}, cfg.Areas)
}

func TestLoad_BackendErrorIsFatal(t *testing.T) {
	_, err := Load(context.Background(), &failingBackend{MemoryBackend: store.NewMemoryBackend(), getErr: errors.New("down")}, discardLogger(), Options{})
	assert.Error(t, err)
}

func TestCreateAudit_ScoresAndDerivesActions(t *testing.T) {
	ctx := context.Background()
	s := newFiveQuestionState(t, nil)

	rec, actions, err := s.CreateAudit(ctx, AuditInput{
		Area:    "ALMACÉN",
		Auditor: "  Ana  ",
		Date:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Answers: fullAnswers(store.RatingYes, store.RatingNo, store.RatingPartial, store.RatingYes, store.RatingNA),
	})

	require.NoError(t, err)
	assert.Equal(t, "Ana", rec.Auditor)
	assert.Equal(t, "JEFE DE ALMACÉN", rec.Responsable)
	assert.Equal(t, 63, rec.Score) // 2.5 / 4
	require.Len(t, actions, 2)
	for _, a := range actions {
		assert.Equal(t, store.ActionPending, a.Status)
		assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), a.DueDate)
		assert.Equal(t, rec.ID, a.AuditID)
		assert.Equal(t, fixedNow, a.CreatedAt)
	}
	assert.Len(t, s.Actions(actionplan.Filter{}), 2)
	assert.Equal(t, "Ana", s.Draft().Auditor)
}

func TestCreateAudit_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newFiveQuestionState(t, nil)
	all := fullAnswers(store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes)

	first, _, err := s.CreateAudit(ctx, AuditInput{Auditor: "a", Answers: all})
	require.NoError(t, err)
	second, _, err := s.CreateAudit(ctx, AuditInput{Auditor: "b", Answers: all})
	require.NoError(t, err)

	list := s.Audits("")
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, store.DefaultAreas[0], first.Area, "area defaults to the first configured one")
	assert.Equal(t, fixedNow.Truncate(24*time.Hour), first.Date)
}

func TestCreateAudit_RequiresAuditor(t *testing.T) {
	s := newFiveQuestionState(t, nil)
	_, _, err := s.CreateAudit(context.Background(), AuditInput{Auditor: "   "})
	assert.ErrorIs(t, err, ErrAuditorRequired)
	assert.Empty(t, s.Audits(""))
}

func TestCreateAudit_IncompleteNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	s := newFiveQuestionState(t, nil)
	partial := fullAnswers(store.RatingNo, store.RatingYes)

	_, _, err := s.CreateAudit(ctx, AuditInput{Auditor: "a", Answers: partial})
	require.ErrorIs(t, err, ErrIncompleteAnswers)
	var inc *IncompleteError
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, 2, inc.Answered)
	assert.Equal(t, 5, inc.Total)

	rec, actions, err := s.CreateAudit(ctx, AuditInput{Auditor: "a", Answers: partial, ConfirmIncomplete: true})
	require.NoError(t, err)
	assert.Equal(t, 50, rec.Score)
	assert.Len(t, actions, 1)
}

func TestCreateAudit_RejectsUnknownRating(t *testing.T) {
	s := newFiveQuestionState(t, nil)
	_, _, err := s.CreateAudit(context.Background(), AuditInput{
		Auditor: "a",
		Answers: []store.Answer{{QuestionID: 1, Rating: "MAYBE"}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateAudit_DuplicateAnswersKeepLast(t *testing.T) {
	s := newFiveQuestionState(t, nil)
	answers := append(fullAnswers(store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes),
		store.Answer{QuestionID: 1, Rating: store.RatingNo})

	rec, actions, err := s.CreateAudit(context.Background(), AuditInput{Auditor: "a", Answers: answers})

	require.NoError(t, err)
	assert.Len(t, rec.Answers, 5)
	assert.Equal(t, store.RatingNo, rec.Answers[0].Rating)
	assert.Equal(t, 80, rec.Score)
	assert.Len(t, actions, 1)
}

func TestUpdateAudit_NeverDerivesActions(t *testing.T) {
	ctx := context.Background()
	s := newFiveQuestionState(t, nil)
	rec, actions, err := s.CreateAudit(ctx, AuditInput{
		Auditor: "a",
		Answers: fullAnswers(store.RatingNo, store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes),
	})
	require.NoError(t, err)
	require.Len(t, actions, 1)

	updated, err := s.UpdateAudit(ctx, rec.ID, AuditInput{
		Auditor: "a",
		Answers: fullAnswers(store.RatingNo, store.RatingNo, store.RatingNo, store.RatingPartial, store.RatingNo),
	})

	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, 10, updated.Score)
	assert.Equal(t, rec.Date, updated.Date)
	assert.Len(t, s.Actions(actionplan.Filter{}), 1)
	assert.Len(t, s.Audits(""), 1)
}

func TestUpdateAudit_AreaChangeRemapsResponsable(t *testing.T) {
	ctx := context.Background()
	s := newFiveQuestionState(t, nil)
	all := fullAnswers(store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes)
	rec, _, err := s.CreateAudit(ctx, AuditInput{Area: "ALMACÉN", Auditor: "a", Answers: all})
	require.NoError(t, err)

	updated, err := s.UpdateAudit(ctx, rec.ID, AuditInput{Area: "CALIDAD", Auditor: "a", Answers: all})

	require.NoError(t, err)
	assert.Equal(t, "JEFE DE CALIDAD", updated.Responsable)
}

func TestUpdateAudit_NotFound(t *testing.T) {
	s := newFiveQuestionState(t, nil)
	_, err := s.UpdateAudit(context.Background(), uuid.New(), AuditInput{Auditor: "a"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAudit_KeepsActions(t *testing.T) {
	ctx := context.Background()
	s := newFiveQuestionState(t, nil)
	rec, _, err := s.CreateAudit(ctx, AuditInput{
		Auditor: "a",
		Answers: fullAnswers(store.RatingNo, store.RatingPartial, store.RatingYes, store.RatingYes, store.RatingYes),
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAudit(ctx, rec.ID))

	assert.Empty(t, s.Audits(""))
	assert.Len(t, s.Actions(actionplan.Filter{}), 2)
	assert.ErrorIs(t, s.DeleteAudit(ctx, rec.ID), ErrNotFound)
}

func TestStatePersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	b := store.NewMemoryBackend()
	s := newFiveQuestionState(t, b)
	rec, _, err := s.CreateAudit(ctx, AuditInput{
		Auditor: "Luis",
		Answers: fullAnswers(store.RatingNo, store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes),
	})
	require.NoError(t, err)

	reloaded := newTestState(t, b)

	got, err := reloaded.Audit(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Score, got.Score)
	assert.Len(t, reloaded.Actions(actionplan.Filter{}), 1)
	assert.Len(t, reloaded.Config().Questions, len(store.DefaultQuestions))
	assert.Equal(t, "Luis", reloaded.Draft().Auditor)
}

func TestCreateAudit_PersistFailureLeavesStateUnchanged(t *testing.T) {
	b := &failingBackend{MemoryBackend: store.NewMemoryBackend()}
	s := newFiveQuestionState(t, b)
	b.putErr = errors.New("disk full")

	_, derived, err := s.CreateAudit(context.Background(), AuditInput{
		Auditor: "a",
		Answers: fullAnswers(store.RatingNo, store.RatingPartial, store.RatingYes, store.RatingYes, store.RatingYes),
	})

	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, derived)
	assert.Empty(t, s.Audits(""))
	assert.Empty(t, s.Actions(actionplan.Filter{}))

	b.putErr = nil
	_, derived, err = s.CreateAudit(context.Background(), AuditInput{
		Auditor: "a",
		Answers: fullAnswers(store.RatingNo, store.RatingPartial, store.RatingYes, store.RatingYes, store.RatingYes),
	})
	require.NoError(t, err)
	assert.Len(t, derived, 2)
	assert.Len(t, s.Audits(""), 1, "retry after a failed save does not duplicate the audit")
	assert.Len(t, s.Actions(actionplan.Filter{}), 2)
}

func TestCreateAudit_UnknownQuestionsDoNotCompleteForm(t *testing.T) {
	s := newFiveQuestionState(t, nil)
	answers := []store.Answer{
		{QuestionID: 101, Rating: store.RatingYes},
		{QuestionID: 102, Rating: store.RatingYes},
		{QuestionID: 103, Rating: store.RatingYes},
		{QuestionID: 104, Rating: store.RatingYes},
		{QuestionID: 1, Rating: store.RatingNo},
	}

	_, _, err := s.CreateAudit(context.Background(), AuditInput{Auditor: "a", Answers: answers})

	var inc *IncompleteError
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, 1, inc.Answered)
	assert.Equal(t, 5, inc.Total)
	assert.Empty(t, s.Audits(""))
}

func TestUpdateAction_AnyTransition(t *testing.T) {
	ctx := context.Background()
	s := newFiveQuestionState(t, nil)
	_, actions, err := s.CreateAudit(ctx, AuditInput{
		Auditor: "a",
		Answers: fullAnswers(store.RatingNo, store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes),
	})
	require.NoError(t, err)
	id := actions[0].ID

	for _, st := range []store.ActionStatus{store.ActionClosed, store.ActionPending, store.ActionInProgress, store.ActionClosed} {
		status := st
		got, err := s.UpdateAction(ctx, id, actionplan.Patch{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	bad := store.ActionStatus("ARCHIVED")
	_, err = s.UpdateAction(ctx, id, actionplan.Patch{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.UpdateAction(ctx, uuid.New(), actionplan.Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndClearActions(t *testing.T) {
	ctx := context.Background()
	s := newFiveQuestionState(t, nil)
	_, actions, err := s.CreateAudit(ctx, AuditInput{
		Auditor: "a",
		Answers: fullAnswers(store.RatingNo, store.RatingNo, store.RatingNo, store.RatingYes, store.RatingYes),
	})
	require.NoError(t, err)
	require.Len(t, actions, 3)

	require.NoError(t, s.DeleteAction(ctx, actions[0].ID))
	assert.Len(t, s.Actions(actionplan.Filter{}), 2)

	n, err := s.ClearActions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.Actions(actionplan.Filter{}))
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	s := newFiveQuestionState(t, nil)
	_, _, err := s.CreateAudit(ctx, AuditInput{
		Area:    "CALIDAD",
		Auditor: "a",
		Answers: fullAnswers(store.RatingNo, store.RatingYes, store.RatingYes, store.RatingYes, store.RatingYes),
	})
	require.NoError(t, err)

	d := s.Dashboard()
	assert.Equal(t, 1, d.TotalAudits)
	assert.Equal(t, 80, d.AverageScore)
	assert.Equal(t, 1, d.OpenActions)

	c := s.Consolidated()
	assert.Len(t, c.Questions, 5)
	assert.Equal(t, "CALIDAD", c.AreaRanking.Best[0].Name)
}
