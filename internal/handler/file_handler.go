package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/auth"
	"docvault/internal/domain"
	"docvault/internal/service"
)

// Максимальный размер загружаемого документа — 50 МБ
const maxUploadSize = 50 << 20

type FileHandler struct {
	fileService *service.FileService
	validate    *validator.Validate
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		validate:    validator.New(),
	}
}

func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.PrincipalFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, trace.BadParameter("failed to parse multipart form"))
		return
	}

	folderID, err := uuid.Parse(r.FormValue("folder_id"))
	if err != nil {
		respondError(w, trace.BadParameter("invalid folder id"))
		return
	}

	formFile, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, trace.BadParameter("file is required"))
		return
	}
	defer formFile.Close()

	data, err := io.ReadAll(formFile)
	if err != nil {
		respondError(w, trace.Wrap(err))
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	file, err := h.fileService.Upload(r.Context(), principal, domain.FileUpload{
		Name:        name,
		ContentType: header.Header.Get("Content-Type"),
		FolderID:    folderID,
		Data:        data,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, file)
}

type renameFileRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (h *FileHandler) RenameFile(w http.ResponseWriter, r *http.Request) {
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

	var req renameFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, trace.BadParameter("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, trace.BadParameter("invalid request: %v", err))
		return
	}

	if err := h.fileService.Rename(r.Context(), principal, fileID, req.Name); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

func (h *FileHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
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

	if err := h.fileService.ToggleFavorite(r.Context(), principal, fileID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *FileHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
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

	if err := h.fileService.Move(r.Context(), principal, fileID, targetID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

func (h *FileHandler) GetViewURL(w http.ResponseWriter, r *http.Request) {
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

	url, err := h.fileService.ViewURL(r.Context(), principal, fileID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
