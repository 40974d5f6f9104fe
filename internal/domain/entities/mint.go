package entities

import "time"

// PendingMint is a staged mint waiting for the client signature.
// AssetSecretKey is the 64-byte ed25519 key of the generated asset account and
// Transaction is the serialized transaction as handed to the client.
type PendingMint struct {
	RequestID      string    `json:"request_id"`
	Owner          string    `json:"owner"`
	AssetID        string    `json:"asset_id"`
	AssetSecretKey []byte    `json:"asset_secret_key"`
	Transaction    []byte    `json:"transaction"`
	CreatedAt      time.Time `json:"created_at"`
}

// Expired reports whether the entry is older than ttl at now
func (p *PendingMint) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(p.CreatedAt) > ttl
}

// PaymentAsset selects how a mint is paid for
type PaymentAsset string

const (
	PaymentSOL PaymentAsset = "sol"
	PaymentSKR PaymentAsset = "skr"
)
