package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(d int) *time.Time {
	t := now.AddDate(0, 0, -d)
	return &t
}

func maxedInput() entities.ScoreInput {
	return entities.ScoreInput{
		TxCount:          50_000,
		FirstTxTime:      daysAgo(2000),
		Now:              now,
		SOLBalance:       5_000,
		UniqueTokenCount: 100,
		NFTCount:         100,
		Holdings: entities.ClassifiedHoldings{
			HasSeekerGenesis: true,
			IsCuratedMember:  true,
			HasDeFiExposure:  true,
			HasLiquidStaking: true,
			IsMemeHeavy:      true,
		},
	}
}

func TestCompute_EmptyWallet(t *testing.T) {
	res := Compute(entities.ScoreInput{Now: now})

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, entities.TierMercury, res.Tier)
	assert.Equal(t, "common", res.Rarity)
	assert.Empty(t, res.Badges)
}

func TestCompute_SingleMembership(t *testing.T) {
	in := entities.ScoreInput{
		Now:      now,
		Holdings: entities.ClassifiedHoldings{HasSeekerGenesis: true},
	}

	res := Compute(in)

	assert.Equal(t, genesisBonus, res.Score)
	assert.Equal(t, genesisBonus, res.Breakdown.Membership)
	assert.Equal(t, TierFor(genesisBonus, false, false), res.Tier)
	assert.Equal(t, []entities.Badge{entities.BadgeSeekerGenesis}, res.Badges)
}

func TestCompute_Clamped(t *testing.T) {
	res := Compute(maxedInput())

	assert.Equal(t, MaxScore, res.Score)
	assert.Equal(t, entities.TierSun, res.Tier)
}

func TestCompute_RarityGate(t *testing.T) {
	maxed := Compute(maxedInput())

	gated := Compute(entities.ScoreInput{
		Now: now,
		Holdings: entities.ClassifiedHoldings{
			HasSeekerGenesis: true,
			HasPreorder:      true,
		},
	})

	require.Less(t, gated.Score, maxed.Score)
	assert.Equal(t, entities.TierBinarySun, gated.Tier)
	assert.Equal(t, "mythic", gated.Rarity)
	assert.Greater(t, gated.Tier.Rank(), maxed.Tier.Rank())
}

func TestCompute_Monotonic(t *testing.T) {
	base := entities.ScoreInput{
		TxCount:          10,
		FirstTxTime:      daysAgo(30),
		Now:              now,
		SOLBalance:       1,
		UniqueTokenCount: 2,
		NFTCount:         1,
	}

	bumps := map[string]func(in *entities.ScoreInput, step int){
		"tx":      func(in *entities.ScoreInput, s int) { in.TxCount += s * 97 },
		"age":     func(in *entities.ScoreInput, s int) { in.FirstTxTime = daysAgo(30 + s*41) },
		"balance": func(in *entities.ScoreInput, s int) { in.SOLBalance += float64(s) * 3.7 },
		"tokens":  func(in *entities.ScoreInput, s int) { in.UniqueTokenCount += s },
		"nfts":    func(in *entities.ScoreInput, s int) { in.NFTCount += s },
	}

	for name, bump := range bumps {
		t.Run(name, func(t *testing.T) {
			prev := Compute(base).Score
			for step := 1; step <= 60; step++ {
				in := base
				bump(&in, step)
				got := Compute(in).Score
				assert.GreaterOrEqual(t, got, prev, "step %d", step)
				prev = got
			}
		})
	}
}

func TestCompute_Bounds(t *testing.T) {
	inputs := []entities.ScoreInput{
		{Now: now, TxCount: -5, SOLBalance: -1, UniqueTokenCount: -3, NFTCount: -2},
		{Now: now, FirstTxTime: daysAgo(-10)},
		maxedInput(),
	}

	for _, in := range inputs {
		res := Compute(in)
		assert.GreaterOrEqual(t, res.Score, 0)
		assert.LessOrEqual(t, res.Score, MaxScore)
		assert.NotEqual(t, -1, res.Tier.Rank())

		seen := make(map[entities.Badge]bool)
		for _, b := range res.Badges {
			assert.False(t, seen[b], "duplicate badge %s", b)
			seen[b] = true
		}
	}
}

func TestCompute_Badges(t *testing.T) {
	in := entities.ScoreInput{
		TxCount:          12_000,
		FirstTxTime:      daysAgo(800),
		Now:              now,
		SOLBalance:       150,
		UniqueTokenCount: 30,
		NFTCount:         25,
		Holdings: entities.ClassifiedHoldings{
			HasPreorder: true,
			IsMemeHeavy: true,
		},
	}

	res := Compute(in)

	assert.Equal(t, []entities.Badge{
		entities.BadgePreorder,
		entities.BadgeOG,
		entities.BadgeWhale,
		entities.BadgeCollector,
		entities.BadgeTitan,
		entities.BadgeHyperactive,
		entities.BadgeDiversified,
		entities.BadgeDegen,
		entities.BadgeDiamondHands,
	}, res.Badges)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score int
		want  entities.Tier
	}{
		{0, entities.TierMercury},
		{99, entities.TierMercury},
		{100, entities.TierMars},
		{349, entities.TierVenus},
		{350, entities.TierEarth},
		{650, entities.TierUranus},
		{1099, entities.TierJupiter},
		{1100, entities.TierSun},
		{MaxScore, entities.TierSun},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.score, false, false), "score %d", tt.score)
	}
	assert.Equal(t, entities.TierBinarySun, TierFor(0, true, true))
	assert.Equal(t, entities.TierSun, TierFor(MaxScore, true, false))
}

func TestWalletAgeDays(t *testing.T) {
	assert.Equal(t, 0, WalletAgeDays(nil, now))
	assert.Equal(t, 10, WalletAgeDays(daysAgo(10), now))
	assert.Equal(t, 0, WalletAgeDays(daysAgo(-1), now))
}
