package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/application/services"
	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// MarketHandler handles HTTP requests for market data
type MarketHandler struct {
	market *services.MarketService
	prices *services.PriceService
	logger *zap.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(market *services.MarketService, prices *services.PriceService, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{
		market: market,
		prices: prices,
		logger: logger,
	}
}

// RegisterRoutes registers the market routes
func (h *MarketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/market/collection-stats", h.CollectionStats)
	r.Get("/market/mint-quote", h.MintQuote)
}

// CollectionStats handles GET /market/collection-stats?collection=&mint=&symbol=&name=
func (h *MarketHandler) CollectionStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := entities.CollectionQuery{
		Collection: q.Get("collection"),
		Mint:       q.Get("mint"),
		Symbol:     q.Get("symbol"),
		Name:       q.Get("name"),
	}
	if query == (entities.CollectionQuery{}) {
		respondError(w, http.StatusBadRequest, "one of collection, mint, symbol or name is required")
		return
	}

	respondJSON(w, http.StatusOK, h.market.CollectionStats(r.Context(), query))
}

// MintQuote handles GET /market/mint-quote
func (h *MarketHandler) MintQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.prices.GetMintQuote(r.Context())
	if err != nil {
		status, message := errorResponse(err)
		h.logger.Warn("Mint quote unavailable", zap.Error(err))
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}
