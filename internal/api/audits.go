package api

import (
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Audit5S/internal/events"
	"github.com/MikeSquared-Agency/Audit5S/internal/metrics"
	"github.com/MikeSquared-Agency/Audit5S/internal/state"
	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

type AuditsHandler struct {
	state   *state.State
	events  events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewAuditsHandler(st *state.State, pub events.Publisher, m *metrics.Metrics, logger *slog.Logger) *AuditsHandler {
	return &AuditsHandler{state: st, events: pub, metrics: m, logger: logger}
}

type AnswerRequest struct {
	QuestionID int    `json:"questionId" validate:"gt=0"`
	Rating     string `json:"rating" validate:"required,oneof=SI NO PARCIAL NA"`
}

type AuditRequest struct {
	Area              string          `json:"area"`
	Auditor           string          `json:"auditor"`
	Responsable       string          `json:"responsable"`
	Date              string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Answers           []AnswerRequest `json:"answers" validate:"dive"`
	ConfirmIncomplete bool            `json:"confirm_incomplete"`
}

type CreateAuditResponse struct {
	Audit   store.AuditRecord  `json:"audit"`
	Actions []store.ActionItem `json:"actions"`
}

func (h *AuditsHandler) input(r *http.Request) (state.AuditInput, error) {
	var req AuditRequest
	if err := decodeBody(r, &req); err != nil {
		return state.AuditInput{}, err
	}
	in := state.AuditInput{
		Area:              req.Area,
		Auditor:           req.Auditor,
		Responsable:       req.Responsable,
		ConfirmIncomplete: req.ConfirmIncomplete,
		Answers:           make([]store.Answer, 0, len(req.Answers)),
	}
	for _, a := range req.Answers {
		in.Answers = append(in.Answers, store.Answer{QuestionID: a.QuestionID, Rating: store.Rating(a.Rating)})
	}
	if req.Date != "" {
		d, err := h.state.ParseDate(req.Date)
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	return in, nil
}

func (h *AuditsHandler) Draft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Draft())
}

func (h *AuditsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.input(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, actions, err := h.state.CreateAudit(r.Context(), in)
	if err != nil {
		writeStateError(w, err)
		return
	}
	h.metrics.AuditsSaved.WithLabelValues("create").Inc()
	h.metrics.ActionsGenerated.Add(float64(len(actions)))
	h.logger.Info("audit created", "audit_id", rec.ID, "area", rec.Area, "score", rec.Score, "actions", len(actions))

	actor := Actor(r.Context())
	events.Emit(h.events, h.logger, events.SubjectAuditCreated(rec.ID.String()), events.AuditEvent{
		AuditID: rec.ID.String(),
		Area:    rec.Area,
		Auditor: rec.Auditor,
		Score:   rec.Score,
		Actor:   actor,
		Actions: len(actions),
	})
	for _, a := range actions {
		events.Emit(h.events, h.logger, events.SubjectActionCreated(a.ID.String()), actionEvent(a, actor))
	}

	if actions == nil {
		actions = []store.ActionItem{}
	}
	writeJSON(w, http.StatusCreated, CreateAuditResponse{Audit: rec, Actions: actions})
}

func (h *AuditsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Audits(r.URL.Query().Get("area")))
}

func (h *AuditsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audit id")
		return
	}
	rec, err := h.state.Audit(id)
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *AuditsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audit id")
		return
	}
	in, err := h.input(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.state.UpdateAudit(r.Context(), id, in)
	if err != nil {
		writeStateError(w, err)
		return
	}
	h.metrics.AuditsSaved.WithLabelValues("update").Inc()
	events.Emit(h.events, h.logger, events.SubjectAuditUpdated(rec.ID.String()), events.AuditEvent{
		AuditID: rec.ID.String(),
		Area:    rec.Area,
		Auditor: rec.Auditor,
		Score:   rec.Score,
		Actor:   Actor(r.Context()),
	})
	writeJSON(w, http.StatusOK, rec)
}

func (h *AuditsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audit id")
		return
	}
	rec, err := h.state.Audit(id)
	if err != nil {
		writeStateError(w, err)
		return
	}
	if err := h.state.DeleteAudit(r.Context(), id); err != nil {
		writeStateError(w, err)
		return
	}
	events.Emit(h.events, h.logger, events.SubjectAuditDeleted(id.String()), events.AuditEvent{
		AuditID: id.String(),
		Area:    rec.Area,
		Score:   rec.Score,
		Actor:   Actor(r.Context()),
	})
	w.WriteHeader(http.StatusNoContent)
}

func actionEvent(a store.ActionItem, actor string) events.ActionEvent {
	return events.ActionEvent{
		ActionID:    a.ID.String(),
		AuditID:     a.AuditID.String(),
		Area:        a.Area,
		Status:      string(a.Status),
		Responsable: a.Responsable,
		DueDate:     a.DueDate,
		Actor:       actor,
	}
}
