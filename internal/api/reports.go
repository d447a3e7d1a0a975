package api

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Audit5S/internal/actionplan"
	"github.com/MikeSquared-Agency/Audit5S/internal/export"
	"github.com/MikeSquared-Agency/Audit5S/internal/state"
)

type ReportsHandler struct {
	state  *state.State
	logger *slog.Logger
}

func NewReportsHandler(st *state.State, logger *slog.Logger) *ReportsHandler {
	return &ReportsHandler{state: st, logger: logger}
}

func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Dashboard())
}

func (h *ReportsHandler) Consolidated(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Consolidated())
}

func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.Workbook(h.state.Audits(""), h.state.Actions(actionplan.Filter{}), &buf); err != nil {
		h.logger.Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
