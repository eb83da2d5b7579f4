package models

import "time"

// Trait is a named stat with a value between 0 and Max.
type Trait struct {
	Name  string  `json:"name" bson:"name"`
	Value float64 `json:"value" bson:"value"`
	Max   int     `json:"max" bson:"max"`
}

// Animal is a minted creature. Animals are never mutated once created.
type Animal struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	ImageURL    string    `json:"image_url" bson:"image_url"`
	Rarity      Rarity    `json:"rarity" bson:"rarity"`
	DailyYield  float64   `json:"daily_yield" bson:"daily_yield"`
	MarketValue float64   `json:"market_value" bson:"market_value"`
	IsHybrid    bool      `json:"is_hybrid" bson:"is_hybrid"`
	Parents     []string  `json:"parents,omitempty" bson:"parents,omitempty"`
	HatchedAt   time.Time `json:"hatched_at" bson:"hatched_at"`
	Traits      []Trait   `json:"traits" bson:"traits"`
}

// NewAnimal mints an animal from generated metadata. Parents are recorded only
// for hybrids.
func NewAnimal(id string, meta AnimalMetadata, imageURL string, parents []string, hatchedAt time.Time) Animal {
	traits := make([]Trait, 0, len(meta.Traits))
	for _, t := range meta.Traits {
		traits = append(traits, Trait{Name: t.Name, Value: t.Value, Max: TraitMax})
	}

	animal := Animal{
		ID:          id,
		Name:        meta.Name,
		Description: meta.Description,
		ImageURL:    imageURL,
		Rarity:      meta.Rarity,
		DailyYield:  meta.DailyYield,
		MarketValue: meta.MarketValue,
		HatchedAt:   hatchedAt,
		Traits:      traits,
	}
	if len(parents) > 0 {
		animal.IsHybrid = true
		animal.Parents = append([]string(nil), parents...)
	}
	return animal
}

// Clone returns a deep copy so callers cannot alias internal slices.
func (a Animal) Clone() Animal {
	out := a
	if a.Parents != nil {
		out.Parents = append([]string(nil), a.Parents...)
	}
	if a.Traits != nil {
		out.Traits = append([]Trait(nil), a.Traits...)
	}
	return out
}
