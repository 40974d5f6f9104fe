package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorResponse maps a service error onto a status code and a client-safe message
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, entities.ErrInvalidAddress):
		return http.StatusBadRequest, entities.ErrInvalidAddress.Error()
	case errors.Is(err, entities.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, entities.ErrMintNotFound):
		return http.StatusBadRequest, entities.ErrMintNotFound.Error()
	case errors.Is(err, entities.ErrNoRoute):
		return http.StatusInternalServerError, entities.ErrNoRoute.Error()
	case errors.Is(err, entities.ErrSignerUnavailable):
		return http.StatusInternalServerError, entities.ErrSignerUnavailable.Error()
	case errors.Is(err, entities.ErrPriceUnavailable):
		return http.StatusServiceUnavailable, entities.ErrPriceUnavailable.Error()
	case errors.Is(err, entities.ErrUpstream):
		return http.StatusBadGateway, entities.ErrUpstream.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// decodeJSON decodes a request body, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}
