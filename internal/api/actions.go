package api

import (
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Audit5S/internal/actionplan"
	"github.com/MikeSquared-Agency/Audit5S/internal/events"
	"github.com/MikeSquared-Agency/Audit5S/internal/state"
	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

type ActionsHandler struct {
	state  *state.State
	events events.Publisher
	logger *slog.Logger
}

func NewActionsHandler(st *state.State, pub events.Publisher, logger *slog.Logger) *ActionsHandler {
	return &ActionsHandler{state: st, events: pub, logger: logger}
}

type ActionView struct {
	store.ActionItem
	Overdue bool `json:"overdue"`
}

type ActionListResponse struct {
	Items  []ActionView            `json:"items"`
	Counts actionplan.StatusCounts `json:"counts"`
}

type ActionPatchRequest struct {
	Status          *string `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS CLOSED"`
	QuestionText    *string `json:"questionText"`
	SuggestedAction *string `json:"suggestedAction"`
	Responsable     *string `json:"responsable"`
	DueDate         *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Comments        *string `json:"comments"`
}

// List filters by ?status= and ?q=. Counts always cover the whole plan.
func (h *ActionsHandler) List(w http.ResponseWriter, r *http.Request) {
	f := actionplan.Filter{
		Status: store.ActionStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("q"),
	}
	if f.Status != "" && !f.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	now := h.state.Now()
	all := h.state.Actions(actionplan.Filter{})
	items := actionplan.Apply(all, f)
	resp := ActionListResponse{
		Items:  make([]ActionView, 0, len(items)),
		Counts: actionplan.Counts(all, now),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, ActionView{ActionItem: it, Overdue: actionplan.Overdue(it, now)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ActionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid action id")
		return
	}
	a, err := h.state.Action(id)
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActionView{ActionItem: a, Overdue: actionplan.Overdue(a, h.state.Now())})
}

func (h *ActionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid action id")
		return
	}
	var req ActionPatchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := actionplan.Patch{
		QuestionText:    req.QuestionText,
		SuggestedAction: req.SuggestedAction,
		Responsable:     req.Responsable,
		Comments:        req.Comments,
	}
	if req.Status != nil {
		status := store.ActionStatus(*req.Status)
		p.Status = &status
	}
	if req.DueDate != nil {
		due, err := h.state.ParseDate(*req.DueDate)
		if err != nil {
			writeStateError(w, err)
			return
		}
		p.DueDate = &due
	}

	a, err := h.state.UpdateAction(r.Context(), id, p)
	if err != nil {
		writeStateError(w, err)
		return
	}
	events.Emit(h.events, h.logger, events.SubjectActionUpdated(a.ID.String()), actionEvent(a, Actor(r.Context())))
	writeJSON(w, http.StatusOK, ActionView{ActionItem: a, Overdue: actionplan.Overdue(a, h.state.Now())})
}

func (h *ActionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid action id")
		return
	}
	if err := h.state.DeleteAction(r.Context(), id); err != nil {
		writeStateError(w, err)
		return
	}
	events.Emit(h.events, h.logger, events.SubjectActionDeleted(id.String()), events.ActionEvent{
		ActionID: id.String(),
		Actor:    Actor(r.Context()),
	})
	w.WriteHeader(http.StatusNoContent)
}

// Clear deletes the whole action plan.
func (h *ActionsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	before := h.state.Actions(actionplan.Filter{})
	n, err := h.state.ClearActions(r.Context())
	if err != nil {
		writeStateError(w, err)
		return
	}
	actor := Actor(r.Context())
	for _, a := range before {
		events.Emit(h.events, h.logger, events.SubjectActionDeleted(a.ID.String()), events.ActionEvent{
			ActionID: a.ID.String(),
			Actor:    actor,
		})
	}
	h.logger.Info("action plan cleared", "removed", n, "actor", actor)
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}
