package scoring

import (
	"math"
	"time"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// MaxScore is the upper clamp of every score
const MaxScore = 1400

// Factor caps
const (
	maxActivityPoints = 300
	maxAgePoints      = 250
	maxBalancePoints  = 200
	maxTokenPoints    = 100
	maxNFTPoints      = 150

	ageFullDays    = 730
	pointsPerToken = 2
	pointsPerNFT   = 3
)

// Flat bonuses per classifier flag
const (
	genesisBonus     = 200
	preorderBonus    = 150
	curatedBonus     = 100
	defiBonus        = 50
	liquidStakeBonus = 50
	memeHeavyBonus   = 50
)

// Badge thresholds
const (
	ogAgeDays           = 730
	diamondHandsAgeDays = 365
	whaleSOL            = 100
	collectorNFTs       = 20
	titanTxCount        = 10_000
	hyperactiveTxCount  = 1_000
	diversifiedTokens   = 25
)

type tierStep struct {
	min  int
	tier entities.Tier
}

// tierSteps is ordered by descending minimum score
var tierSteps = []tierStep{
	{1100, entities.TierSun},
	{950, entities.TierJupiter},
	{800, entities.TierSaturn},
	{650, entities.TierUranus},
	{500, entities.TierNeptune},
	{350, entities.TierEarth},
	{200, entities.TierVenus},
	{100, entities.TierMars},
	{0, entities.TierMercury},
}

var rarityByTier = map[entities.Tier]string{
	entities.TierMercury:   "common",
	entities.TierMars:      "common",
	entities.TierVenus:     "uncommon",
	entities.TierEarth:     "uncommon",
	entities.TierNeptune:   "rare",
	entities.TierUranus:    "rare",
	entities.TierSaturn:    "epic",
	entities.TierJupiter:   "epic",
	entities.TierSun:       "legendary",
	entities.TierBinarySun: "mythic",
}

// badgeRule is evaluated independently of every other rule
type badgeRule struct {
	badge entities.Badge
	match func(in entities.ScoreInput, ageDays int) bool
}

var badgeRules = []badgeRule{
	{entities.BadgeSeekerGenesis, func(in entities.ScoreInput, _ int) bool { return in.Holdings.HasSeekerGenesis }},
	{entities.BadgePreorder, func(in entities.ScoreInput, _ int) bool { return in.Holdings.HasPreorder }},
	{entities.BadgeOG, func(_ entities.ScoreInput, age int) bool { return age >= ogAgeDays }},
	{entities.BadgeWhale, func(in entities.ScoreInput, _ int) bool { return in.SOLBalance >= whaleSOL }},
	{entities.BadgeCollector, func(in entities.ScoreInput, _ int) bool { return in.NFTCount >= collectorNFTs }},
	{entities.BadgeTitan, func(in entities.ScoreInput, _ int) bool { return in.TxCount >= titanTxCount }},
	{entities.BadgeHyperactive, func(in entities.ScoreInput, _ int) bool { return in.TxCount >= hyperactiveTxCount }},
	{entities.BadgeDiversified, func(in entities.ScoreInput, _ int) bool { return in.UniqueTokenCount >= diversifiedTokens }},
	{entities.BadgeBlueChip, func(in entities.ScoreInput, _ int) bool { return in.Holdings.IsCuratedMember }},
	{entities.BadgeDeFiUser, func(in entities.ScoreInput, _ int) bool { return in.Holdings.HasDeFiExposure }},
	{entities.BadgeStaker, func(in entities.ScoreInput, _ int) bool { return in.Holdings.HasLiquidStaking }},
	{entities.BadgeDegen, func(in entities.ScoreInput, _ int) bool { return in.Holdings.IsMemeHeavy }},
	{entities.BadgeDiamondHands, func(_ entities.ScoreInput, age int) bool { return age >= diamondHandsAgeDays }},
}

// WalletAgeDays returns whole days between first and now, zero when first is unknown
func WalletAgeDays(first *time.Time, now time.Time) int {
	if first == nil || now.Before(*first) {
		return 0
	}
	return int(now.Sub(*first).Hours() / 24)
}

// Compute reduces the input into a score, tier and badge set.
// It is a pure function: the same input always yields the same result.
func Compute(in entities.ScoreInput) entities.ScoreResult {
	ageDays := WalletAgeDays(in.FirstTxTime, in.Now)

	b := entities.ScoreBreakdown{
		Activity: logPoints(float64(max(in.TxCount, 0)), maxActivityPoints),
		Age:      min(maxAgePoints, ageDays*maxAgePoints/ageFullDays),
		Balance:  logPoints(math.Max(in.SOLBalance, 0), maxBalancePoints),
		Tokens:   min(maxTokenPoints, max(in.UniqueTokenCount, 0)*pointsPerToken),
		NFTs:     min(maxNFTPoints, max(in.NFTCount, 0)*pointsPerNFT),
	}

	h := in.Holdings
	if h.HasSeekerGenesis {
		b.Membership += genesisBonus
	}
	if h.HasPreorder {
		b.Membership += preorderBonus
	}
	if h.IsCuratedMember {
		b.Bonuses += curatedBonus
	}
	if h.HasDeFiExposure {
		b.Bonuses += defiBonus
	}
	if h.HasLiquidStaking {
		b.Bonuses += liquidStakeBonus
	}
	if h.IsMemeHeavy {
		b.Bonuses += memeHeavyBonus
	}

	total := b.Activity + b.Age + b.Balance + b.Tokens + b.NFTs + b.Membership + b.Bonuses
	score := min(MaxScore, max(0, total))

	tier := TierFor(score, h.HasSeekerGenesis, h.HasPreorder)

	return entities.ScoreResult{
		Score:     score,
		Tier:      tier,
		Rarity:    rarityByTier[tier],
		Badges:    badgesFor(in, ageDays),
		Breakdown: b,
	}
}

// TierFor maps a clamped score to its tier. Holding both memberships
// yields the binary tier whatever the score.
func TierFor(score int, genesis, preorder bool) entities.Tier {
	if genesis && preorder {
		return entities.TierBinarySun
	}
	for _, s := range tierSteps {
		if score >= s.min {
			return s.tier
		}
	}
	return entities.TierMercury
}

// Rarity returns the display rarity of a tier
func Rarity(t entities.Tier) string {
	return rarityByTier[t]
}

func badgesFor(in entities.ScoreInput, ageDays int) []entities.Badge {
	badges := make([]entities.Badge, 0, len(badgeRules))
	for _, r := range badgeRules {
		if r.match(in, ageDays) {
			badges = append(badges, r.badge)
		}
	}
	return badges
}

// logPoints gives round(log10(v+1)*100) capped at limit
func logPoints(v float64, limit int) int {
	p := int(math.Round(math.Log10(v+1) * 100))
	return min(limit, p)
}
