package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shutdown-tracker/internal/errs"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Kind   string   `json:"kind,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(data)
}

// writeError maps the error taxonomy onto HTTP statuses. Anything outside it
// is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, logr *zap.Logger, err error) {
	var e *errs.Error
	if !errors.As(err, &e) {
		logr.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case errs.KindValidation:
		status = http.StatusBadRequest
		if errors.Is(err, errs.ErrAlreadyCleared) {
			status = http.StatusConflict
		}
	case errs.KindPermission:
		status = http.StatusForbidden
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindGeocoding:
		status = http.StatusUnprocessableEntity
	}
	logr.Warn("request rejected", zap.String("kind", string(e.Kind)), zap.Error(err))
	writeJSON(w, status, errorResponse{Error: e.Message, Kind: string(e.Kind), Fields: e.Fields})
}

func idParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.Validation("parse id", "invalid id", "id")
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.Validation("decode body", "invalid request body")
	}
	return nil
}

func parseBool(input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "1" || input == "true"
}
