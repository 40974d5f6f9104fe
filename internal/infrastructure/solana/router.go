package solana

import (
	"unicode/utf16"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// routePrime is the modulus of the routing hash, a prime below 2^31
const routePrime = 1_000_000_007

// KeyRouter maps a routing key onto one of N credentials.
// The mapping is stable for the lifetime of the credential set.
type KeyRouter struct {
	credentials []string
}

// NewKeyRouter creates a router over the given credentials, skipping empty entries
func NewKeyRouter(credentials []string) *KeyRouter {
	creds := make([]string, 0, len(credentials))
	for _, c := range credentials {
		if c != "" {
			creds = append(creds, c)
		}
	}
	return &KeyRouter{credentials: creds}
}

// Len returns the number of configured credentials
func (r *KeyRouter) Len() int {
	return len(r.credentials)
}

// Index returns the home credential index of key. The empty key always maps to 0.
func (r *KeyRouter) Index(key string) (int, error) {
	n := len(r.credentials)
	if n == 0 {
		return 0, entities.ErrNoRoute
	}
	return int(routeHash(key) % uint64(n)), nil
}

// Order returns the credential indices in ring order starting at the home index of key
func (r *KeyRouter) Order(key string) ([]int, error) {
	start, err := r.Index(key)
	if err != nil {
		return nil, err
	}
	n := len(r.credentials)
	order := make([]int, n)
	for i := range order {
		order[i] = (start + i) % n
	}
	return order, nil
}

// routeHash accumulates hash = (hash*31 + c) mod routePrime over the UTF-16 code units of key
func routeHash(key string) uint64 {
	var hash uint64
	for _, c := range utf16.Encode([]rune(key)) {
		hash = (hash*31 + uint64(c)) % routePrime
	}
	return hash
}
