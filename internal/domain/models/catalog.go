package models

import (
	"fmt"
	"strings"
)

const (
	// StartingBalance is the $ZOO balance every session begins with.
	StartingBalance int64 = 25000

	// BreedingCost is charged when a breed is confirmed.
	BreedingCost int64 = 5000

	// YieldTickRate is the fraction of total daily yield credited on each tick.
	YieldTickRate = 0.05

	// TraitMax is the upper bound of every trait value.
	TraitMax = 100
)

// EggTier enumerates the purchasable egg classes, ordered by price.
type EggTier string

const (
	TierBasic   EggTier = "Basic"
	TierSilver  EggTier = "Silver"
	TierGold    EggTier = "Gold"
	TierDiamond EggTier = "Diamond"
)

// HybridTier is the tier context used when generating bred offspring.
const HybridTier = TierGold

// Rarity enumerates animal quality classes from lowest to highest.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
	RarityMythical  Rarity = "Mythical"
)

// Rarities lists every rarity in ascending order.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary, RarityMythical}

// Rank returns the position of r in the rarity order, or -1 when unknown.
func (r Rarity) Rank() int {
	for i, candidate := range Rarities {
		if candidate == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is one of the known rarities.
func (r Rarity) Valid() bool {
	return r.Rank() >= 0
}

// EggType describes one entry of the egg market.
type EggType struct {
	Tier        EggTier `json:"tier"`
	Name        string  `json:"name"`
	Price       int64   `json:"price"`
	Description string  `json:"description"`
	Bias        string  `json:"-"` // generator hint for the rarity spread
}

// EggTypes is the static market catalog.
var EggTypes = []EggType{
	{Tier: TierBasic, Name: "Basic Egg", Price: 2000, Description: "High chance of Common/Rare", Bias: "Bias towards Common or Rare. Lower stats."},
	{Tier: TierSilver, Name: "Silver Egg", Price: 8000, Description: "Better odds for Rare/Epic", Bias: "Bias towards Rare or Epic. Balanced stats."},
	{Tier: TierGold, Name: "Gold Egg", Price: 25000, Description: "High chance of Epic/Legendary", Bias: "Bias towards Epic or Legendary. High stats."},
	{Tier: TierDiamond, Name: "Diamond Egg", Price: 100000, Description: "Only for the elite. Mythical awaits.", Bias: "Bias towards Legendary or Mythical. Extreme stats."},
}

// LookupEggType finds the catalog entry for a tier. Matching is case-insensitive.
func LookupEggType(tier EggTier) (EggType, error) {
	for _, t := range EggTypes {
		if strings.EqualFold(string(t.Tier), string(tier)) {
			return t, nil
		}
	}
	return EggType{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
}

// View is the screen the player is looking at.
type View string

const (
	ViewMarket View = "MARKET"
	ViewZoo    View = "ZOO"
	ViewLab    View = "LAB"
)

// ParseView validates a view name.
func ParseView(value string) (View, error) {
	switch v := View(strings.ToUpper(strings.TrimSpace(value))); v {
	case ViewMarket, ViewZoo, ViewLab:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownView, value)
	}
}
