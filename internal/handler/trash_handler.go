package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/auth"
	"docvault/internal/domain"
	"docvault/internal/service"
)

type TrashHandler struct {
	trashService *service.TrashService
}

func NewTrashHandler(trashService *service.TrashService) *TrashHandler {
	return &TrashHandler{trashService: trashService}
}

func (h *TrashHandler) GetTrash(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	content, err := h.trashService.ListTrash(r.Context(), principal)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, content)
}

func (h *TrashHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	h.folderAction(w, r, h.trashService.SoftDeleteFolder, "deleted")
}

func (h *TrashHandler) RestoreFolder(w http.ResponseWriter, r *http.Request) {
	h.folderAction(w, r, h.trashService.RestoreFolder, "restored")
}

func (h *TrashHandler) PurgeFolder(w http.ResponseWriter, r *http.Request) {
	h.folderAction(w, r, h.trashService.PermanentDeleteFolder, "purged")
}

func (h *TrashHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	h.fileAction(w, r, h.trashService.SoftDeleteFile, "deleted")
}

func (h *TrashHandler) RestoreFile(w http.ResponseWriter, r *http.Request) {
	h.fileAction(w, r, h.trashService.RestoreFile, "restored")
}

func (h *TrashHandler) PurgeFile(w http.ResponseWriter, r *http.Request) {
	h.fileAction(w, r, h.trashService.PermanentDeleteFile, "purged")
}

type trashAction func(ctx context.Context, principal domain.Principal, id uuid.UUID) error

func (h *TrashHandler) folderAction(w http.ResponseWriter, r *http.Request, action trashAction, status string) {
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

	if err := action(r.Context(), principal, folderID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *TrashHandler) fileAction(w http.ResponseWriter, r *http.Request, action trashAction, status string) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, trace.BadParameter("invalid file id"))
		return
	}

	if err := action(r.Context(), principal, fileID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": status})
}
