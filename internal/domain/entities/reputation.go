package entities

import "time"

// ClassifiedHoldings is the semantic view of a wallet's assets.
// It is derived once per request and never cached.
type ClassifiedHoldings struct {
	NFTCount           int      `json:"nft_count"`
	FungibleTokenCount int      `json:"fungible_token_count"`
	UniqueTokenCount   int      `json:"unique_token_count"`
	HasSeekerGenesis   bool     `json:"has_seeker_genesis"`
	HasPreorder        bool     `json:"has_preorder"`
	IsCuratedMember    bool     `json:"is_curated_member"`
	HasLiquidStaking   bool     `json:"has_liquid_staking"`
	HasDeFiExposure    bool     `json:"has_defi_exposure"`
	IsMemeHeavy        bool     `json:"is_meme_heavy"`
	MemeValueUSD       float64  `json:"meme_value_usd"`
	MemeSymbols        []string `json:"meme_symbols"`
}

// Tier is an ordered reputation label
type Tier string

// Tiers from lowest to highest. TierBinarySun is a rarity gate, not a score band.
const (
	TierMercury   Tier = "mercury"
	TierMars      Tier = "mars"
	TierVenus     Tier = "venus"
	TierEarth     Tier = "earth"
	TierNeptune   Tier = "neptune"
	TierUranus    Tier = "uranus"
	TierSaturn    Tier = "saturn"
	TierJupiter   Tier = "jupiter"
	TierSun       Tier = "sun"
	TierBinarySun Tier = "binary_sun"
)

// AllTiers lists every tier in ascending order
var AllTiers = []Tier{
	TierMercury, TierMars, TierVenus, TierEarth, TierNeptune,
	TierUranus, TierSaturn, TierJupiter, TierSun, TierBinarySun,
}

// Rank returns the position of the tier in AllTiers, or -1 when unknown
func (t Tier) Rank() int {
	for i, v := range AllTiers {
		if v == t {
			return i
		}
	}
	return -1
}

// Badge identifies an independently evaluated achievement
type Badge string

const (
	BadgeSeekerGenesis Badge = "seeker_genesis"
	BadgePreorder      Badge = "chapter2_preorder"
	BadgeOG            Badge = "og"
	BadgeWhale         Badge = "whale"
	BadgeCollector     Badge = "collector"
	BadgeTitan         Badge = "titan"
	BadgeHyperactive   Badge = "hyperactive"
	BadgeDiversified   Badge = "diversified"
	BadgeBlueChip      Badge = "blue_chip"
	BadgeDeFiUser      Badge = "defi_user"
	BadgeStaker        Badge = "staker"
	BadgeDegen         Badge = "degen"
	BadgeDiamondHands  Badge = "diamond_hands"
)

// ScoreInput carries the raw counters the score engine reduces.
// Now is explicit so the engine stays a pure function.
type ScoreInput struct {
	TxCount          int
	FirstTxTime      *time.Time
	Now              time.Time
	SOLBalance       float64
	UniqueTokenCount int
	NFTCount         int
	Holdings         ClassifiedHoldings
}

// ScoreBreakdown shows how many points each factor contributed
type ScoreBreakdown struct {
	Activity   int `json:"activity"`
	Age        int `json:"age"`
	Balance    int `json:"balance"`
	Tokens     int `json:"tokens"`
	NFTs       int `json:"nfts"`
	Membership int `json:"membership"`
	Bonuses    int `json:"bonuses"`
}

// ScoreResult is the deterministic output of the score engine
type ScoreResult struct {
	Score     int            `json:"score"`
	Tier      Tier           `json:"tier"`
	Rarity    string         `json:"rarity"`
	Badges    []Badge        `json:"badges"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// WalletStats are the raw counters exposed next to the score
type WalletStats struct {
	WalletAgeDays    int     `json:"walletAgeDays"`
	SOLBalance       float64 `json:"solBalance"`
	TxCount          int     `json:"txCount"`
	TokenCount       int     `json:"tokenCount"`
	NFTCount         int     `json:"nftCount"`
	UniqueTokenCount int     `json:"uniqueTokenCount"`
	HistoryTruncated bool    `json:"historyTruncated"`
}

// Snapshot is the reproducible identity snapshot of one address
type Snapshot struct {
	Address     string
	Result      ScoreResult
	Stats       WalletStats
	Holdings    ClassifiedHoldings
	FirstTxTime *time.Time
	BuiltAt     time.Time
}
