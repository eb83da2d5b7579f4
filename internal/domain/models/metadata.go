package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// MetadataRequest asks the metadata generator for a new creature. Both parent
// names set means a hybrid request.
type MetadataRequest struct {
	Tier        EggTier
	Parent1Name string
	Parent2Name string
}

// IsHybrid reports whether the request names a breeding pair.
func (r MetadataRequest) IsHybrid() bool {
	return r.Parent1Name != "" && r.Parent2Name != ""
}

// TraitValue is a generated trait before it is annotated with its maximum.
type TraitValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// AnimalMetadata is the descriptive payload returned by the metadata generator.
type AnimalMetadata struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Rarity       Rarity       `json:"rarity"`
	DailyYield   float64      `json:"dailyYield"`
	MarketValue  float64      `json:"marketValue"`
	VisualPrompt string       `json:"visualPrompt"`
	Traits       []TraitValue `json:"traits"`
}

// Validate rejects payloads that do not match the expected schema.
func (m AnimalMetadata) Validate() error {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return fmt.Errorf("%w: name is empty", ErrGenerationFailure)
	case strings.TrimSpace(m.Description) == "":
		return fmt.Errorf("%w: description is empty", ErrGenerationFailure)
	case !m.Rarity.Valid():
		return fmt.Errorf("%w: unknown rarity %q", ErrGenerationFailure, m.Rarity)
	case !nonNegative(m.DailyYield):
		return fmt.Errorf("%w: invalid daily yield %v", ErrGenerationFailure, m.DailyYield)
	case !nonNegative(m.MarketValue):
		return fmt.Errorf("%w: invalid market value %v", ErrGenerationFailure, m.MarketValue)
	case strings.TrimSpace(m.VisualPrompt) == "":
		return fmt.Errorf("%w: visual prompt is empty", ErrGenerationFailure)
	case len(m.Traits) == 0:
		return fmt.Errorf("%w: no traits", ErrGenerationFailure)
	}

	for i, t := range m.Traits {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: trait %d has no name", ErrGenerationFailure, i)
		}
		if math.IsNaN(t.Value) || t.Value < 0 || t.Value > TraitMax {
			return fmt.Errorf("%w: trait %s value %v out of range", ErrGenerationFailure, t.Name, t.Value)
		}
	}
	return nil
}

// ParseAnimalMetadata decodes and validates a generator reply. Unknown fields
// and trailing data are rejected.
func ParseAnimalMetadata(raw []byte) (AnimalMetadata, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var meta AnimalMetadata
	if err := dec.Decode(&meta); err != nil {
		return AnimalMetadata{}, fmt.Errorf("%w: decode metadata: %v", ErrGenerationFailure, err)
	}
	if dec.More() {
		return AnimalMetadata{}, fmt.Errorf("%w: trailing data after metadata", ErrGenerationFailure)
	}
	if err := meta.Validate(); err != nil {
		return AnimalMetadata{}, err
	}
	return meta, nil
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
