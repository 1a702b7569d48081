package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shutdown-tracker/internal/filter"
	mdlwr "shutdown-tracker/internal/middleware"
	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/services"
	"shutdown-tracker/internal/utils"
)

// ShutdownHandler handles HTTP requests for shutdown records
type ShutdownHandler struct {
	service *services.ShutdownService
	logr    *zap.Logger
}

func NewShutdownHandler(svc *services.ShutdownService, logr *zap.Logger) *ShutdownHandler {
	return &ShutdownHandler{service: svc, logr: logr}
}

func filterFor(r *http.Request) filter.Config {
	var email string
	if u := mdlwr.UserFromContext(r.Context()); u != nil {
		email = u.Email
	}
	return filter.ParseConfig(r.URL.Query(), email)
}

// List handles GET /shutdowns?search=&status=&reason=&region=&mine=
func (h *ShutdownHandler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(r.Context(), filterFor(r))
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Map handles GET /shutdowns/map?selected=<ids>&hovered=<ids> plus the list filters
func (h *ShutdownHandler) Map(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := services.MapOptions{
		Selected: idSet(utils.ParseQueryList(q, "selected")),
		Hovered:  idSet(utils.ParseQueryList(q, "hovered")),
	}
	view, err := h.service.Map(r.Context(), filterFor(r), opts)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func idSet(raw []string) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(raw))
	for _, v := range raw {
		if id, err := uuid.Parse(v); err == nil {
			out[id] = true
		}
	}
	return out
}

// Regions handles GET /shutdowns/regions
func (h *ShutdownHandler) Regions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions(r.Context())
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": regions})
}

// Legend handles GET /shutdowns/legend
func (h *ShutdownHandler) Legend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"scheme":  h.service.Palette().Scheme(),
		"entries": h.service.Legend(),
	})
}

// Get handles GET /shutdowns/{id}
func (h *ShutdownHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// History handles GET /shutdowns/{id}/history
func (h *ShutdownHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	log, err := h.service.History(r.Context(), id)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity_log": log})
}

// Create handles POST /shutdowns
func (h *ShutdownHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateShutdownRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logr, err)
		return
	}
	rec, err := h.service.Create(r.Context(), req, mdlwr.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Update handles PUT /shutdowns/{id}
func (h *ShutdownHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	var req models.UpdateShutdownRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logr, err)
		return
	}
	rec, err := h.service.Update(r.Context(), id, req, mdlwr.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Clear handles POST /shutdowns/{id}/clear
func (h *ShutdownHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	rec, err := h.service.Clear(r.Context(), id, mdlwr.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /shutdowns/{id}?confirm=true
func (h *ShutdownHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	confirm := parseBool(r.URL.Query().Get("confirm"))
	if err := h.service.Delete(r.Context(), id, confirm, mdlwr.UserFromContext(r.Context())); err != nil {
		writeError(w, h.logr, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
