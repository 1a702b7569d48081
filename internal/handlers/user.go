package handlers

import (
	"net/http"

	"go.uber.org/zap"

	mdlwr "shutdown-tracker/internal/middleware"
	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/services"
)

type UserHandler struct {
	service *services.UserService
	logr    *zap.Logger
}

func NewUserHandler(svc *services.UserService, logr *zap.Logger) *UserHandler {
	return &UserHandler{service: svc, logr: logr}
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context(), mdlwr.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// UpdateAccessLevel handles PUT /users/{id}/access-level
func (h *UserHandler) UpdateAccessLevel(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	var req models.UpdateAccessLevelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logr, err)
		return
	}
	info, err := h.service.UpdateAccessLevel(r.Context(), id, req, mdlwr.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logr, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
