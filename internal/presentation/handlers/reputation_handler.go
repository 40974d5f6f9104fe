package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/application/services"
)

// ReputationHandler handles HTTP requests for identity snapshots
type ReputationHandler struct {
	service *services.ReputationService
	logger  *zap.Logger
}

// NewReputationHandler creates a new reputation handler
func NewReputationHandler(service *services.ReputationService, logger *zap.Logger) *ReputationHandler {
	return &ReputationHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the reputation routes
func (h *ReputationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reputation", h.GetReputation)
	r.Post("/reputation/batch", h.Batch)
	r.Get("/reputation/compare", h.Compare)
}

// BatchRequest is the body of POST /reputation/batch
type BatchRequest struct {
	Addresses []string `json:"addresses"`
}

// GetReputation handles GET /reputation?address=
func (h *ReputationHandler) GetReputation(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if !services.IsValidAddress(address) {
		respondError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}

	response, err := h.service.GetReputation(r.Context(), address)
	if err != nil {
		h.fail(w, err, zap.String("address", address))
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Batch handles POST /reputation/batch
func (h *ReputationHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Addresses) == 0 || len(req.Addresses) > services.MaxBatchSize {
		respondError(w, http.StatusBadRequest, "addresses must contain between 1 and 5 entries")
		return
	}

	response, err := h.service.Batch(r.Context(), req.Addresses)
	if err != nil {
		h.fail(w, err, zap.Int("addresses", len(req.Addresses)))
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Compare handles GET /reputation/compare?a=&b=
func (h *ReputationHandler) Compare(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if !services.IsValidAddress(a) || !services.IsValidAddress(b) {
		respondError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}

	response, err := h.service.Compare(r.Context(), a, b)
	if err != nil {
		h.fail(w, err, zap.String("a", a), zap.String("b", b))
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// fail reports upstream failures as 500 rather than 502
func (h *ReputationHandler) fail(w http.ResponseWriter, err error, fields ...zap.Field) {
	status, message := errorResponse(err)
	if status == http.StatusBadGateway {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Failed to build reputation", append(fields, zap.Error(err))...)
	}
	respondError(w, status, message)
}
