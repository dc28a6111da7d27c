package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"fieldops-backend/internal/metrics"
	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/services"
	"fieldops-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type UnitEntryHandler struct {
	Service    *services.UnitEntryService
	JobService *services.JobService
	Receipts   *services.ReceiptPDFService
	Photos     *storage.PhotoStore
}

func NewUnitEntryHandler(s *services.UnitEntryService, jobService *services.JobService, receipts *services.ReceiptPDFService, photos *storage.PhotoStore) *UnitEntryHandler {
	return &UnitEntryHandler{
		Service:    s,
		JobService: jobService,
		Receipts:   receipts,
		Photos:     photos,
	}
}

// Create captures a new digital receipt in draft
func (h *UnitEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUnitEntryRequest
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

	entry, err := h.Service.Create(r.Context(), &req, actor, companyID)
	if err != nil {
		writeWorkflowError(w, err, "unit_entry", http.StatusConflict)
		return
	}

	metrics.UnitEntriesCapturedTotal.Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

func (h *UnitEntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid unit entry ID", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeWorkflowError(w, err, "unit_entry", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

// transition runs one ledger action shared by submit/verify/approve/etc.
// Conflicting states come back as 409 on this surface.
func (h *UnitEntryHandler) transition(w http.ResponseWriter, r *http.Request, run func(id int) (*models.UnitEntry, error)) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid unit entry ID", http.StatusBadRequest)
		return
	}

	entry, err := run(id)
	if err != nil {
		writeWorkflowError(w, err, "unit_entry", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entry)
}

func (h *UnitEntryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	h.transition(w, r, func(id int) (*models.UnitEntry, error) {
		return h.Service.Submit(r.Context(), id, actor)
	})
}

func (h *UnitEntryHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	// Notes are optional: an empty body is fine, malformed JSON is not
	var req models.VerifyUnitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.transition(w, r, func(id int) (*models.UnitEntry, error) {
		return h.Service.Verify(r.Context(), id, req.Notes, actor)
	})
}

func (h *UnitEntryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req models.VerifyUnitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.transition(w, r, func(id int) (*models.UnitEntry, error) {
		return h.Service.Approve(r.Context(), id, req.Notes, actor)
	})
}

func (h *UnitEntryHandler) Dispute(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req models.DisputeUnitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.transition(w, r, func(id int) (*models.UnitEntry, error) {
		entry, err := h.Service.Dispute(r.Context(), id, &req, actor)
		if err == nil {
			metrics.DisputesOpenedTotal.WithLabelValues(req.Category).Inc()
		}
		return entry, err
	})
}

func (h *UnitEntryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req models.ResolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.transition(w, r, func(id int) (*models.UnitEntry, error) {
		return h.Service.Resolve(r.Context(), id, req.ReinstateTo, actor)
	})
}

func (h *UnitEntryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req models.AdjustUnitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.transition(w, r, func(id int) (*models.UnitEntry, error) {
		return h.Service.Adjust(r.Context(), id, &req, actor)
	})
}

func (h *UnitEntryHandler) MarkInvoiced(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req models.MarkInvoicedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.transition(w, r, func(id int) (*models.UnitEntry, error) {
		return h.Service.MarkInvoiced(r.Context(), id, req.ClaimID, actor)
	})
}

func (h *UnitEntryHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	h.transition(w, r, func(id int) (*models.UnitEntry, error) {
		return h.Service.MarkPaid(r.Context(), id, actor)
	})
}

// SoftDelete hides an entry from default queries. The reason is required.
func (h *UnitEntryHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}
	var req models.DeleteUnitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.transition(w, r, func(id int) (*models.UnitEntry, error) {
		return h.Service.SoftDelete(r.Context(), id, req.Reason, actor)
	})
}

// ListByJob returns the entries on a job; ?include_deleted=true shows
// soft-deleted rows too
func (h *UnitEntryHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid job ID", http.StatusBadRequest)
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"

	entries, err := h.Service.GetByJob(r.Context(), jobID, includeDeleted)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []*models.UnitEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// ListUnbilled returns approved entries not yet on a claim
func (h *UnitEntryHandler) ListUnbilled(w http.ResponseWriter, r *http.Request) {
	companyID, _ := middleware.GetCompanyIDFromContext(r.Context())

	entries, err := h.Service.GetUnbilledByCompany(r.Context(), companyID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []*models.UnitEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// ListDisputed returns entries with an open dispute
func (h *UnitEntryHandler) ListDisputed(w http.ResponseWriter, r *http.Request) {
	companyID, _ := middleware.GetCompanyIDFromContext(r.Context())

	entries, err := h.Service.GetDisputed(r.Context(), companyID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []*models.UnitEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// Receipt renders the entry as a PDF for billing packets
func (h *UnitEntryHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid unit entry ID", http.StatusBadRequest)
		return
	}

	entry, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeWorkflowError(w, err, "unit_entry", http.StatusConflict)
		return
	}
	job, err := h.JobService.GetJob(r.Context(), entry.JobID)
	if err != nil {
		writeWorkflowError(w, err, "unit_entry", http.StatusConflict)
		return
	}

	// Presign photo links when storage is configured
	var photoURLs []string
	if h.Photos != nil {
		for _, photo := range entry.Photos {
			url, err := h.Photos.PresignDownload(r.Context(), photo.StorageKey)
			if err != nil {
				continue
			}
			photoURLs = append(photoURLs, url)
		}
	}

	pdfBytes, err := h.Receipts.Render(r.Context(), entry, job, photoURLs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt_%d.pdf"`, entry.ID))
	w.Write(pdfBytes)
}

// PhotoUploadURL presigns a PUT URL for a new field photo
func (h *UnitEntryHandler) PhotoUploadURL(w http.ResponseWriter, r *http.Request) {
	if h.Photos == nil {
		http.Error(w, "Photo storage not configured", http.StatusServiceUnavailable)
		return
	}

	key := fmt.Sprintf("photos/%s", uuid.NewString())
	url, err := h.Photos.PresignUpload(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"storage_key": key,
		"upload_url":  url,
	})
}
