package entities

// PriceKind names an asset priced by the oracle cache
type PriceKind string

const (
	PriceSOL PriceKind = "sol"
	PriceSKR PriceKind = "skr"
)

// MintQuote is the price of one mint in SOL and in the discounted alternate asset
type MintQuote struct {
	SOLUSD        float64 `json:"solUsd"`
	SKRUSD        float64 `json:"skrUsd"`
	BaseSOL       float64 `json:"baseSol"`
	Discount      float64 `json:"discount"`
	BaseUSD       float64 `json:"baseUsd"`
	DiscountedUSD float64 `json:"discountedUsd"`
	SKRAmount     int64   `json:"skrAmount"`
	SKRAmountRaw  string  `json:"skrAmountRaw"`
}

// FloorStatus is the listing state of a collection
type FloorStatus string

const (
	FloorListed    FloorStatus = "listed"
	FloorNotListed FloorStatus = "not_listed"
	FloorUnknown   FloorStatus = "unknown"
)

// CollectionQuery identifies a collection by any combination of hints
type CollectionQuery struct {
	Collection string
	Mint       string
	Symbol     string
	Name       string
}

// CollectionStats is the resolved floor price of a collection
type CollectionStats struct {
	Status    FloorStatus `json:"status"`
	FloorSOL  *float64    `json:"floorSol"`
	Source    string      `json:"source"`
	MEURL     string      `json:"meUrl"`
	TensorURL string      `json:"tensorUrl"`
}
