package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fieldops-backend/internal/cache"
	"fieldops-backend/internal/middleware"
	"fieldops-backend/internal/models"
	"fieldops-backend/internal/repositories"

	"github.com/gorilla/mux"
)

type PriceBookHandler struct {
	Repo *repositories.PriceBookRepository
}

func NewPriceBookHandler(repo *repositories.PriceBookRepository) *PriceBookHandler {
	return &PriceBookHandler{Repo: repo}
}

// CreateItem adds a contracted line item (pm/admin)
func (h *PriceBookHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePriceBookItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ItemCode == "" || req.UnitPrice <= 0 {
		http.Error(w, "item_code and a positive unit_price are required", http.StatusBadRequest)
		return
	}

	companyID, _ := middleware.GetCompanyIDFromContext(r.Context())

	item := &models.PriceBookItem{
		CompanyID:   companyID,
		ItemCode:    req.ItemCode,
		Description: req.Description,
		Unit:        req.Unit,
		UnitPrice:   req.UnitPrice,
	}
	if err := h.Repo.Create(r.Context(), item); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cache.InvalidatePriceBookCaches(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// ListItems returns the company price book. Rates change rarely, so the
// list is cached; CreateItem/UpdatePrice clear the price_book:* pattern.
func (h *PriceBookHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	companyID, _ := middleware.GetCompanyIDFromContext(r.Context())

	key := fmt.Sprintf("price_book:list:%d", companyID)
	if data, ok := cache.GetCached(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	items, err := h.Repo.ListByCompany(r.Context(), companyID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Ensure we return empty array instead of null
	if items == nil {
		items = []*models.PriceBookItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cache.SetCached(r.Context(), key, data, 5*time.Minute)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// UpdatePrice changes the going rate for new captures only
func (h *PriceBookHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	var req struct {
		UnitPrice float64 `json:"unit_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UnitPrice <= 0 {
		http.Error(w, "unit_price must be positive", http.StatusBadRequest)
		return
	}

	if err := h.Repo.UpdatePrice(r.Context(), id, req.UnitPrice); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cache.InvalidatePriceBookCaches(r.Context())

	item, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}
