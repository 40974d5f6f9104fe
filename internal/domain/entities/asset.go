package entities

import "time"

// Interface kinds reported by the indexing API
const (
	InterfaceFungibleToken   = "FungibleToken"
	InterfaceFungibleAsset   = "FungibleAsset"
	InterfaceV1NFT           = "V1_NFT"
	InterfaceProgrammableNFT = "ProgrammableNFT"
	InterfaceMplCoreAsset    = "MplCoreAsset"
	InterfaceCustom          = "Custom"
)

// SignatureRecord is one entry of an account's transaction history
type SignatureRecord struct {
	Signature string
	Slot      uint64
	BlockTime *int64 // Unix seconds, nil when the cluster did not report one
	Failed    bool
}

// History is the accumulated signature list of an account, newest first
type History struct {
	Records   []SignatureRecord
	Pages     int
	Truncated bool // page cap reached before the upstream ran out of records
}

// OldestBlockTime returns the block time of the last retrieved record.
// With a finite page cap this is the oldest reachable record, which under-reports
// the age of accounts with more history than the cap allows.
func (h *History) OldestBlockTime() *time.Time {
	for i := len(h.Records) - 1; i >= 0; i-- {
		if bt := h.Records[i].BlockTime; bt != nil {
			t := time.Unix(*bt, 0).UTC()
			return &t
		}
	}
	return nil
}

// Grouping is a collection reference attached to an asset.
// Name is the collection display name when the indexer includes collection metadata.
type Grouping struct {
	Key   string `json:"group_key"`
	Value string `json:"group_value"`
	Name  string `json:"name,omitempty"`
}

// AssetRecord is one owned item as reported by the indexing API.
// RawBalance is the per-mint balance in base units and is only set for
// fungible kinds. MetadataPointer carries the token-extension metadata or
// group pointer when present.
type AssetRecord struct {
	ID              string
	Interface       string
	Name            string
	Symbol          string
	ImageURL        string
	Decimals        int
	Supply          uint64
	RawBalance      uint64
	Groupings       []Grouping
	Creators        []string
	Authorities     []string
	MetadataPointer string
	Compressed      bool
}

// CollectionValues returns the values of every collection grouping on the asset
func (a *AssetRecord) CollectionValues() []string {
	values := make([]string, 0, len(a.Groupings))
	for _, g := range a.Groupings {
		if g.Key == "collection" && g.Value != "" {
			values = append(values, g.Value)
		}
	}
	return values
}

// TokenAccountRecord is a parsed on-chain token account owned by the wallet
type TokenAccountRecord struct {
	Address  string
	Mint     string
	UIAmount float64
	Decimals int
}
