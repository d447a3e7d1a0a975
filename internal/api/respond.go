package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Audit5S/internal/state"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON body into v and runs its validate tags.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" failed "+fe.Tag())
			}
			return errors.New("invalid request: " + strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

// writeStateError maps state sentinel errors to HTTP statuses.
func writeStateError(w http.ResponseWriter, err error) {
	var incomplete *state.IncompleteError
	switch {
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":    "not every question has been answered; resend with confirm_incomplete to save anyway",
			"answered": incomplete.Answered,
			"total":    incomplete.Total,
		})
	case errors.Is(err, state.ErrAuditorRequired):
		writeError(w, http.StatusBadRequest, "auditor name required")
	case errors.Is(err, state.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, state.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func idParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// nameParam returns a path parameter with percent-escapes decoded.
func nameParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
