package entities

import "errors"

// Client input errors
var (
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrInvalidRequest = errors.New("invalid request")
)

// Configuration errors, fatal for the request and never retried
var (
	ErrNoRoute           = errors.New("no upstream credentials configured")
	ErrSignerUnavailable = errors.New("server signing key not configured")
)

// Upstream and state errors
var (
	ErrUpstream         = errors.New("upstream request failed")
	ErrPriceUnavailable = errors.New("price data unavailable")

	// ErrMintNotFound covers never staged, expired and already finalized
	// requests alike. The store does not keep enough history to tell them apart.
	ErrMintNotFound = errors.New("mint request expired or missing")
)
