package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/services"

	"github.com/gorilla/mux"
)

type JobHandler struct {
	Service *services.JobService
}

func NewJobHandler(s *services.JobService) *JobHandler {
	return &JobHandler{Service: s}
}

func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	companyID, _ := middleware.GetCompanyIDFromContext(r.Context())

	job, err := h.Service.CreateJob(r.Context(), &req, actor, companyID)
	if err != nil {
		writeWorkflowError(w, err, "job", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	job, err := h.Service.GetJob(r.Context(), id)
	if err != nil {
		writeWorkflowError(w, err, "job", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	companyID, _ := middleware.GetCompanyIDFromContext(r.Context())

	// Optional ?status= filter; legacy aliases are accepted here too
	var status models.JobStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		normalized, ok := models.NormalizeJobStatus(raw)
		if !ok {
			http.Error(w, "Unknown status filter", http.StatusBadRequest)
			return
		}
		status = normalized
	}

	jobs, err := h.Service.ListJobs(r.Context(), companyID, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Ensure we return empty array instead of null
	if jobs == nil {
		jobs = []*models.Job{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// UpdateStatus applies one lifecycle transition. Bad edges come back as
// 400 on this surface.
func (h *JobHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateJobStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	job, err := h.Service.TransitionStatus(r.Context(), id, req.Status, req.Reason, actor)
	if err != nil {
		writeWorkflowError(w, err, "job", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// Assign sets crew and schedule window without touching status
func (h *JobHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	var req models.AssignJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	job, err := h.Service.Assign(r.Context(), id, &req, actor)
	if err != nil {
		writeWorkflowError(w, err, "job", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

func (h *JobHandler) AddDependency(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	var req models.CreateDependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	job, err := h.Service.AddDependency(r.Context(), id, &req, actor)
	if err != nil {
		writeWorkflowError(w, err, "job", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// CycleDependency advances one dependency through its tri-state cycle
func (h *JobHandler) CycleDependency(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}
	depID := vars["dep_id"]

	var req models.UpdateDependencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	job, err := h.Service.CycleDependency(r.Context(), id, depID, &req, actor)
	if err != nil {
		writeWorkflowError(w, err, "job", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// ApplyPrefieldChecklist converts the GF's checklist into dependencies
// and moves the job to pre_fielding in one write
func (h *JobHandler) ApplyPrefieldChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}

	var req models.PrefieldChecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	job, err := h.Service.ApplyPrefieldChecklist(r.Context(), id, &req, actor)
	if err != nil {
		writeWorkflowError(w, err, "job", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}
