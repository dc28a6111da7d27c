package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"

	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	Repo *repositories.AuditLogRepository
}

func NewAuditLogHandler(repo *repositories.AuditLogRepository) *AuditLogHandler {
	return &AuditLogHandler{Repo: repo}
}

// ListByTarget returns the workflow trail for one job or unit entry
func (h *AuditLogHandler) ListByTarget(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	targetType := vars["target_type"]
	if targetType != "job" && targetType != "unit_entry" {
		http.Error(w, "target_type must be job or unit_entry", http.StatusBadRequest)
		return
	}

	targetID, err := strconv.Atoi(vars["target_id"])
	if err != nil {
		http.Error(w, "Invalid target ID", http.StatusBadRequest)
		return
	}

	logs, err := h.Repo.ListByTarget(r.Context(), targetType, targetID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if logs == nil {
		logs = []*models.AuditLog{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}

// ListRecent returns the latest actions across the company (admin/pm)
func (h *AuditLogHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	logs, err := h.Repo.ListRecent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if logs == nil {
		logs = []*models.AuditLog{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}
