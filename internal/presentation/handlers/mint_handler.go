package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/application/services"
)

// MintHandler handles HTTP requests for minting and attestation
type MintHandler struct {
	mint   *services.MintService
	attest *services.AttestationService
	logger *zap.Logger
}

// NewMintHandler creates a new mint handler
func NewMintHandler(mint *services.MintService, attest *services.AttestationService, logger *zap.Logger) *MintHandler {
	return &MintHandler{
		mint:   mint,
		attest: attest,
		logger: logger,
	}
}

// RegisterRoutes registers the mint routes
func (h *MintHandler) RegisterRoutes(r chi.Router) {
	r.Post("/mint", h.Mint)
	r.Post("/attest", h.Attest)
}

// AttestRequest is the body of POST /attest
type AttestRequest struct {
	Address string `json:"address"`
}

// Mint handles POST /mint. A body with requestId and signedTransaction
// finalizes a staged mint; any other body stages a new one.
func (h *MintHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req services.MintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.IsFinalize() {
		response, err := h.mint.Finalize(r.Context(), &req)
		if err != nil {
			h.fail(w, err, "Failed to finalize mint", zap.String("request_id", req.RequestID))
			return
		}
		respondJSON(w, http.StatusOK, response)
		return
	}

	if !services.IsValidAddress(req.Owner) {
		respondError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}
	response, err := h.mint.Stage(r.Context(), &req)
	if err != nil {
		h.fail(w, err, "Failed to stage mint", zap.String("owner", req.Owner))
		return
	}
	respondJSON(w, http.StatusOK, response)
}

// Attest handles POST /attest
func (h *MintHandler) Attest(w http.ResponseWriter, r *http.Request) {
	var req AttestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !services.IsValidAddress(req.Address) {
		respondError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}

	response, err := h.attest.Attest(r.Context(), req.Address)
	if err != nil {
		h.fail(w, err, "Failed to build attestation", zap.String("address", req.Address))
		return
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *MintHandler) fail(w http.ResponseWriter, err error, msg string, fields ...zap.Field) {
	status, message := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, append(fields, zap.Error(err))...)
	} else {
		h.logger.Debug(msg, append(fields, zap.Error(err))...)
	}
	respondError(w, status, message)
}
