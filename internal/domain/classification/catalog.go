package classification

// MembershipRule describes how a special membership is recognised.
// Any populated field is a match source; ExcludeFragments veto every
// source except an exact mint match.
type MembershipRule struct {
	Mints            []string
	Collections      []string
	Pointers         []string
	Authorities      []string
	NameFragments    []string
	ExcludeFragments []string
}

// MemeToken is a fixed-price meme asset tracked by mint
type MemeToken struct {
	Symbol   string
	Decimals int
	PriceUSD float64
}

// Catalog holds the fixed lookup tables the classifier matches against
type Catalog struct {
	SeekerGenesis         MembershipRule
	Preorder              MembershipRule
	CuratedCollections    []string
	DeFiFragments         []string
	LiquidStakingMints    []string
	MemeTokens            map[string]MemeToken
	MemeHeavyThresholdUSD float64
}

// DefaultCatalog returns the production lookup tables
func DefaultCatalog() Catalog {
	return Catalog{
		SeekerGenesis: MembershipRule{
			Mints:            []string{"GT22s89nU4iWFkNXj1Bw6uYhJJWDRPpShHt4Bk8f99Te"},
			Collections:      []string{"GT22s89nU4iWFkNXj1Bw6uYhJJWDRPpShHt4Bk8f99Te"},
			Pointers:         []string{"GT2zuHVaZQYZSyQMgJPLzvkmyztfyXg2NJunqFp4p3A4"},
			Authorities:      []string{"GT2zuHVaZQYZSyQMgJPLzvkmyztfyXg2NJunqFp4p3A4"},
			NameFragments:    []string{"seeker genesis", "genesis token"},
			ExcludeFragments: []string{"pre-order", "preorder", "chapter 2"},
		},
		Preorder: MembershipRule{
			Mints:         []string{"2DMMamkkxQ6zDMBtkFp8KH7FoWzBMBA1CGTYwom4QH6Z"},
			Collections:   []string{"2DMMamkkxQ6zDMBtkFp8KH7FoWzBMBA1CGTYwom4QH6Z"},
			NameFragments: []string{"chapter 2", "chapter two", "pre-order", "preorder"},
		},
		CuratedCollections: []string{
			"J1S9H3QjnRtBbbuD4HjPV6RpRhwuk4zKbxsnCHuTgh9w", // Mad Lads
			"SMBtHCCC6RYRutFEPb4gZqeBLUZbMNhRKaMKZZLHi7W",  // Solana Monkey Business
			"BUjZjAS2vbbb65g7Z1Ca9ZRVYoJscURG5L3AkVvHP9ac", // Famous Fox Federation
			"6mszaj17KSfVqADrQj3o4W3zoLMTykgmV37W4QadCczK", // Claynosaurz
			"CjL5WpAmf4cMEEGwZGTfTDKWok9a92ykq9aLZrEK2D5H", // Okay Bears
			"8Rt3Ayqth4DAiPnW9MDFi63TiQJHmohfTWLMQFHi4KZH", // Tensorians
		},
		DeFiFragments: []string{
			"jupiter", "raydium", "orca", "marinade", "kamino", "drift",
			"meteora", "marginfi", "solend", "jito", "sanctum", "phoenix",
			"zeta", "mango", "lifinity", "parcl",
		},
		LiquidStakingMints: []string{
			"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So",  // mSOL
			"J1toso1uCk3RLmjorhTtrVwY9HJ7X8V9yYac6Y7kGCPn", // JitoSOL
			"bSo13r4TkiE4KumL71LsHTPpL2euBYLFx6h9HP3piy1",  // bSOL
			"jupSoLaHXQiZZTSfEWMTRRgpnyFm8f6sZdosWBjx93v",  // JupSOL
			"5oVNBeEEQvYi1cX3ir8Dx5n1P7pdxydbGF2X4TxVusJm", // INF
			"7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj", // stSOL
		},
		MemeTokens: map[string]MemeToken{
			"DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": {Symbol: "BONK", Decimals: 5, PriceUSD: 0.00002},
			"EKpQGSJtjMFqKZ9KQanSqYXRcF8fBopzLHYxdM65zcjm": {Symbol: "WIF", Decimals: 6, PriceUSD: 1.5},
			"7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr": {Symbol: "POPCAT", Decimals: 9, PriceUSD: 0.5},
			"ukHH6c7mMyiWCf1b9pnWe25TSpkDDt3H5pQZgZ74J82":  {Symbol: "BOME", Decimals: 6, PriceUSD: 0.005},
			"MEW1gQWJ3nEXg2qgERiKu7FAFj79PHvQVREQUzScPP5":  {Symbol: "MEW", Decimals: 5, PriceUSD: 0.004},
			"7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU": {Symbol: "SAMO", Decimals: 9, PriceUSD: 0.01},
		},
		MemeHeavyThresholdUSD: 100,
	}
}
