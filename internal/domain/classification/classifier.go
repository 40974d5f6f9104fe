/*
 * Copyright (c) 2024 Bima Kharisma Wicaksana
 * GitHub: https://github.com/bimakw
 *
 * Licensed under MIT License with Attribution Requirement.
 * See LICENSE file for details.
 */

package classification

import (
	"math"
	"sort"
	"strings"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// fungibleInterfaces are interface kinds that are fungible by declaration
var fungibleInterfaces = map[string]bool{
	entities.InterfaceFungibleToken: true,
	entities.InterfaceFungibleAsset: true,
}

// assetView is the normalized form every rule is evaluated against.
// Text fields are lowercased once so rules can use plain substring checks.
type assetView struct {
	mint           string
	name           string
	symbol         string
	collectionName string
	collections    []string
	pointer        string
	authorities    []string
	fromAccount    bool
}

func viewOfAsset(a entities.AssetRecord) assetView {
	v := assetView{
		mint:        a.ID,
		name:        strings.ToLower(a.Name),
		symbol:      strings.ToLower(a.Symbol),
		collections: a.CollectionValues(),
		pointer:     a.MetadataPointer,
	}
	for _, g := range a.Groupings {
		if g.Key == "collection" && g.Name != "" {
			v.collectionName = strings.ToLower(g.Name)
			break
		}
	}
	v.authorities = append(v.authorities, a.Creators...)
	v.authorities = append(v.authorities, a.Authorities...)
	return v
}

func viewOfAccount(t entities.TokenAccountRecord) assetView {
	return assetView{mint: t.Mint, fromAccount: true}
}

// Rule is a named predicate that sets one classification flag
type Rule struct {
	Name  string
	Match func(c *Catalog, v assetView) bool
	Apply func(h *entities.ClassifiedHoldings)
}

// Rules are evaluated against every record and accumulate; no rule stops evaluation.
var Rules = []Rule{
	{
		Name:  "seeker_genesis",
		Match: func(c *Catalog, v assetView) bool { return matchMembership(c.SeekerGenesis, v) },
		Apply: func(h *entities.ClassifiedHoldings) { h.HasSeekerGenesis = true },
	},
	{
		Name:  "preorder",
		Match: func(c *Catalog, v assetView) bool { return matchMembership(c.Preorder, v) },
		Apply: func(h *entities.ClassifiedHoldings) { h.HasPreorder = true },
	},
	{
		Name:  "curated_collection",
		Match: matchCurated,
		Apply: func(h *entities.ClassifiedHoldings) { h.IsCuratedMember = true },
	},
	{
		Name:  "defi_protocol",
		Match: matchDeFi,
		Apply: func(h *entities.ClassifiedHoldings) { h.HasDeFiExposure = true },
	},
	{
		Name:  "liquid_staking",
		Match: matchLiquidStaking,
		Apply: func(h *entities.ClassifiedHoldings) { h.HasLiquidStaking = true },
	},
}

// matchMembership checks every match source of a membership rule.
// Token-account records only carry a mint, so only the exact mint source applies to them.
func matchMembership(rule MembershipRule, v assetView) bool {
	if contains(rule.Mints, v.mint) {
		return true
	}
	if v.fromAccount {
		return false
	}
	for _, frag := range rule.ExcludeFragments {
		if strings.Contains(v.name, frag) {
			return false
		}
	}
	for _, c := range v.collections {
		if contains(rule.Collections, c) {
			return true
		}
	}
	if v.pointer != "" && contains(rule.Pointers, v.pointer) {
		return true
	}
	for _, a := range v.authorities {
		if contains(rule.Authorities, a) {
			return true
		}
	}
	for _, frag := range rule.NameFragments {
		if strings.Contains(v.name, frag) ||
			strings.Contains(v.collectionName, frag) ||
			strings.Contains(v.symbol, frag) {
			return true
		}
	}
	return false
}

func matchCurated(c *Catalog, v assetView) bool {
	for _, col := range v.collections {
		if contains(c.CuratedCollections, col) {
			return true
		}
	}
	return false
}

func matchDeFi(c *Catalog, v assetView) bool {
	if v.name == "" {
		return false
	}
	for _, frag := range c.DeFiFragments {
		if strings.Contains(v.name, frag) {
			return true
		}
	}
	return false
}

func matchLiquidStaking(c *Catalog, v assetView) bool {
	return contains(c.LiquidStakingMints, v.mint)
}

// IsFungible decides the fungibility of an asset record.
// Explicit interface, decimals and supply win in that order; records with
// display metadata or a collection are non-fungible; anything else is
// counted as fungible so NFT counts are never overstated.
func IsFungible(a entities.AssetRecord) bool {
	if fungibleInterfaces[a.Interface] {
		return true
	}
	if a.Decimals > 0 || a.Supply > 1 {
		return true
	}
	if a.Name != "" || a.ImageURL != "" || len(a.CollectionValues()) > 0 {
		return false
	}
	return true
}

// Classifier partitions asset and token-account records into semantic buckets
type Classifier struct {
	catalog Catalog
}

// assetTally merges every asset record sharing one ID. A duplicate counts as
// fungible if any copy is, and its meme balance is the largest copy's.
type assetTally struct {
	fungible   bool
	isMeme     bool
	memeAmount float64
}

func (t *assetTally) merge(catalog *Catalog, a entities.AssetRecord) {
	t.fungible = t.fungible || IsFungible(a)

	meme, ok := catalog.MemeTokens[a.ID]
	if !ok {
		return
	}
	decimals := a.Decimals
	if decimals == 0 {
		decimals = meme.Decimals
	}
	amount := float64(a.RawBalance) / math.Pow10(decimals)
	if !t.isMeme || amount > t.memeAmount {
		t.memeAmount = amount
	}
	t.isMeme = true
}

// NewClassifier creates a classifier over the given catalog
func NewClassifier(catalog Catalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// Classify is a pure function of its inputs and does not depend on their order
func (c *Classifier) Classify(assets []entities.AssetRecord, accounts []entities.TokenAccountRecord) entities.ClassifiedHoldings {
	var h entities.ClassifiedHoldings

	tallies := make(map[string]*assetTally, len(assets))
	fungibleMints := make(map[string]bool)
	memeAmounts := make(map[string][]float64)

	// rules see every record, counters see each ID once
	for _, a := range assets {
		c.applyRules(&h, viewOfAsset(a))

		if a.ID == "" {
			if IsFungible(a) {
				h.FungibleTokenCount++
			} else {
				h.NFTCount++
			}
			continue
		}
		t, ok := tallies[a.ID]
		if !ok {
			t = &assetTally{}
			tallies[a.ID] = t
		}
		t.merge(&c.catalog, a)
	}

	for id, t := range tallies {
		if t.fungible {
			h.FungibleTokenCount++
			fungibleMints[id] = true
		} else {
			h.NFTCount++
		}
		if t.isMeme {
			memeAmounts[id] = append(memeAmounts[id], t.memeAmount)
		}
	}

	accountMints := make(map[string][]float64)
	for _, t := range accounts {
		// empty accounts are neither holdings nor exposure
		if t.Mint == "" || t.UIAmount <= 0 {
			continue
		}
		c.applyRules(&h, viewOfAccount(t))
		accountMints[t.Mint] = append(accountMints[t.Mint], t.UIAmount)
	}

	for mint, amounts := range accountMints {
		if _, ok := tallies[mint]; ok {
			continue
		}
		if _, ok := c.catalog.MemeTokens[mint]; ok {
			memeAmounts[mint] = append(memeAmounts[mint], amounts...)
		}
		if accountDecimals(accounts, mint) == 0 {
			h.NFTCount++
			continue
		}
		h.FungibleTokenCount++
		fungibleMints[mint] = true
	}

	h.UniqueTokenCount = len(fungibleMints)
	h.MemeValueUSD, h.MemeSymbols = c.memeTotals(memeAmounts)
	h.IsMemeHeavy = h.MemeValueUSD >= c.catalog.MemeHeavyThresholdUSD && h.MemeValueUSD > 0

	return h
}

func (c *Classifier) applyRules(h *entities.ClassifiedHoldings, v assetView) {
	for _, r := range Rules {
		if r.Match(&c.catalog, v) {
			r.Apply(h)
		}
	}
}

// memeTotals sums the USD value of meme holdings in mint order so the
// floating-point total does not depend on input order
func (c *Classifier) memeTotals(amounts map[string][]float64) (float64, []string) {
	mints := make([]string, 0, len(amounts))
	for m := range amounts {
		mints = append(mints, m)
	}
	sort.Strings(mints)

	var total float64
	symbols := make(map[string]bool)
	for _, m := range mints {
		vals := amounts[m]
		sort.Float64s(vals)
		var qty float64
		for _, q := range vals {
			qty += q
		}
		if qty <= 0 {
			continue
		}
		meme := c.catalog.MemeTokens[m]
		total += qty * meme.PriceUSD
		symbols[meme.Symbol] = true
	}

	list := make([]string, 0, len(symbols))
	for s := range symbols {
		list = append(list, s)
	}
	sort.Strings(list)
	return total, list
}

// accountDecimals returns the decimals reported for a mint. Accounts of
// one mint always agree, so the first match is as good as any.
func accountDecimals(accounts []entities.TokenAccountRecord, mint string) int {
	for _, t := range accounts {
		if t.Mint == mint {
			return t.Decimals
		}
	}
	return 0
}

func contains(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
