package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"trustflow/internal/feedback"
	"trustflow/internal/pipeline"
	"trustflow/internal/strategy"
)

// ProductCreatedRequest is the inbound trigger payload.
type ProductCreatedRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	UnitCost    float64 `json:"unit_cost"`
	ListedPrice float64 `json:"listed_price"`
	Category    string  `json:"category"`
	Owner       string  `json:"owner"`
}

type Handler struct {
	runner *pipeline.Runner
	store  *feedback.Store
}

func NewHandler(runner *pipeline.Runner, store *feedback.Store) *Handler {
	return &Handler{runner: runner, store: store}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProductCreated triggers one pipeline run and returns its structured
// result. The run itself never errors; only malformed requests are
// rejected here.
func (h *Handler) ProductCreated(w http.ResponseWriter, r *http.Request) {
	var req ProductCreatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || req.Quantity <= 0 || req.UnitCost < 0 {
		writeError(w, http.StatusBadRequest, "id, positive quantity and non-negative unit_cost are required")
		return
	}

	res := h.runner.Run(r.Context(), strategy.Product{
		ID:          req.ID,
		Name:        req.Name,
		Quantity:    req.Quantity,
		UnitCost:    req.UnitCost,
		ListedPrice: req.ListedPrice,
		Category:    req.Category,
		Owner:       req.Owner,
		CreatedAt:   time.Now(),
	})
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Decisions(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	records, err := h.store.QueryByIdentity(r.Context(), identity)
	if err != nil {
		slog.Error("decision query failed", "identity", identity, "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"identity": identity,
		"count":    len(records),
		"records":  records,
	})
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	a, err := h.store.AnalyticsFor(r.Context(), identity)
	if err != nil {
		slog.Error("analytics query failed", "identity", identity, "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
