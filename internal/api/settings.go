package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Audit5S/internal/events"
	"github.com/MikeSquared-Agency/Audit5S/internal/state"
	"github.com/MikeSquared-Agency/Audit5S/internal/store"
)

type SettingsHandler struct {
	state  *state.State
	events events.Publisher
	logger *slog.Logger
}

func NewSettingsHandler(st *state.State, pub events.Publisher, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{state: st, events: pub, logger: logger}
}

type AreaRequest struct {
	Name string `json:"name" validate:"required"`
}

type ResponsableRequest struct {
	Name string `json:"name" validate:"required"`
	Area string `json:"area"`
}

type QuestionRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Config())
}

func (h *SettingsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var cfg store.AppConfig
	if err := decodeBody(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w, r, http.StatusOK)(h.state.ReplaceConfig(r.Context(), cfg))
}

func (h *SettingsHandler) AddArea(w http.ResponseWriter, r *http.Request) {
	var req AreaRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w, r, http.StatusCreated)(h.state.AddArea(r.Context(), req.Name))
}

func (h *SettingsHandler) RemoveArea(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK)(h.state.RemoveArea(r.Context(), nameParam(r, "name")))
}

func (h *SettingsHandler) AddResponsable(w http.ResponseWriter, r *http.Request) {
	var req ResponsableRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(w, r, http.StatusCreated)(h.state.AddResponsable(r.Context(), req.Name, req.Area))
}

func (h *SettingsHandler) RemoveResponsable(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK)(h.state.RemoveResponsable(r.Context(), nameParam(r, "name")))
}

func (h *SettingsHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := h.state.AddQuestion(r.Context(), req.Text)
	if err != nil {
		writeStateError(w, err)
		return
	}
	h.announce(r)
	writeJSON(w, http.StatusCreated, q)
}

func (h *SettingsHandler) RemoveQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	h.respond(w, r, http.StatusOK)(h.state.RemoveQuestion(r.Context(), id))
}

// respond writes the updated config or the state error, and announces
// successful changes.
func (h *SettingsHandler) respond(w http.ResponseWriter, r *http.Request, status int) func(store.AppConfig, error) {
	return func(cfg store.AppConfig, err error) {
		if err != nil {
			writeStateError(w, err)
			return
		}
		h.announce(r)
		writeJSON(w, status, cfg)
	}
}

func (h *SettingsHandler) announce(r *http.Request) {
	cfg := h.state.Config()
	h.logger.Info("config updated", "questions", len(cfg.Questions), "areas", len(cfg.Areas), "actor", Actor(r.Context()))
	events.Emit(h.events, h.logger, events.SubjectConfigUpdated, events.ConfigEvent{
		Questions:    len(cfg.Questions),
		Areas:        len(cfg.Areas),
		Responsables: len(cfg.Responsables),
		Actor:        Actor(r.Context()),
	})
}
