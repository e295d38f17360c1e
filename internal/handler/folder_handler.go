package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/auth"
	"docvault/internal/service"
)

type FolderHandler struct {
	folderService *service.FolderService
	validate      *validator.Validate
}

func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		validate:      validator.New(),
	}
}

type createFolderRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
}

func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, trace.BadParameter("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, trace.BadParameter("invalid request: %v", err))
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			respondError(w, trace.BadParameter("invalid parent id"))
			return
		}
		parentID = &id
	}

	folder, err := h.folderService.Create(r.Context(), principal, req.Name, parentID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, folder)
}

type updateFolderRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Favorite *bool   `json:"favorite,omitempty"`
}

func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, trace.BadParameter("invalid folder id"))
		return
	}

	var req updateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, trace.BadParameter("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, trace.BadParameter("invalid request: %v", err))
		return
	}

	params := service.UpdateParams{Name: req.Name, Favorite: req.Favorite}
	if err := h.folderService.Update(r.Context(), principal, folderID, params); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *FolderHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, trace.BadParameter("invalid folder id"))
		return
	}

	if err := h.folderService.ToggleFavorite(r.Context(), principal, folderID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type moveRequest struct {
	TargetFolderID string `json:"target_folder_id" validate:"required,uuid"`
}

func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, trace.BadParameter("invalid folder id"))
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, trace.BadParameter("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, trace.BadParameter("invalid request: %v", err))
		return
	}

	targetID, err := uuid.Parse(req.TargetFolderID)
	if err != nil {
		respondError(w, trace.BadParameter("invalid target folder id"))
		return
	}

	if err := h.folderService.Move(r.Context(), principal, folderID, targetID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

func (h *FolderHandler) GetFolderContent(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, trace.BadParameter("invalid folder id"))
		return
	}

	content, err := h.folderService.ListChildren(r.Context(), principal, folderID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, content)
}

func (h *FolderHandler) GetRootFolders(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	folders, err := h.folderService.ListRoots(r.Context(), principal)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, folders)
}

func (h *FolderHandler) GetFolderTree(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	tree, err := h.folderService.Tree(r.Context(), principal)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tree)
}
