package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gravitational/trace"
)

// respondJSON пишет ответ с заданным статусом
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondError переводит ошибку сервисного слоя в HTTP-статус
func respondError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case trace.IsNotFound(err):
		status = http.StatusNotFound
	case trace.IsAccessDenied(err):
		status = http.StatusForbidden
	case trace.IsBadParameter(err):
		status = http.StatusBadRequest
	case trace.IsAlreadyExists(err):
		status = http.StatusConflict
	default:
		log.Printf("Internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	respondJSON(w, status, map[string]string{"error": trace.UserMessage(err)})
}
