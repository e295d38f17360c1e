package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/auth"
	"docvault/internal/domain"
	"docvault/internal/service"
)

type PermissionHandler struct {
	permissionService *service.PermissionService
	validate          *validator.Validate
}

func NewPermissionHandler(permissionService *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{
		permissionService: permissionService,
		validate:          validator.New(),
	}
}

type grantRequest struct {
	UserID   string  `json:"user_id" validate:"required,uuid"`
	FolderID *string `json:"folder_id,omitempty" validate:"omitempty,uuid"`
	FileID   *string `json:"file_id,omitempty" validate:"omitempty,uuid"`
	Type     string  `json:"type" validate:"required,oneof=READ WRITE DELETE"`
}

func (h *PermissionHandler) Grant(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, trace.BadParameter("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, trace.BadParameter("invalid request: %v", err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, trace.BadParameter("invalid user id"))
		return
	}

	grant := service.GrantRequest{
		UserID: userID,
		Type:   domain.PermissionType(req.Type),
	}
	if req.FolderID != nil {
		id, err := uuid.Parse(*req.FolderID)
		if err != nil {
			respondError(w, trace.BadParameter("invalid folder id"))
			return
		}
		grant.FolderID = &id
	}
	if req.FileID != nil {
		id, err := uuid.Parse(*req.FileID)
		if err != nil {
			respondError(w, trace.BadParameter("invalid file id"))
			return
		}
		grant.FileID = &id
	}

	permission, err := h.permissionService.Grant(r.Context(), principal, grant)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, permission)
}

func (h *PermissionHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	permissionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, trace.BadParameter("invalid permission id"))
		return
	}

	if err := h.permissionService.Revoke(r.Context(), principal, permissionID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *PermissionHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var userID *uuid.UUID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, trace.BadParameter("invalid user id"))
			return
		}
		userID = &id
	}

	permissions, err := h.permissionService.List(r.Context(), principal, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, permissions)
}
