package reporting

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
)

// AnimalSource lists the animals a summary is computed from.
type AnimalSource interface {
	Animals() []models.Animal
}

// RarityCount is the number of owned animals of one rarity.
type RarityCount struct {
	Rarity models.Rarity `json:"rarity"`
	Count  int           `json:"count"`
}

// PortfolioSummary is a read-time projection of the owned animals. It is
// never stored.
type PortfolioSummary struct {
	AnimalCount      int            `json:"animal_count"`
	HybridCount      int            `json:"hybrid_count"`
	ByRarity         []RarityCount  `json:"by_rarity"`
	TotalDailyYield  float64        `json:"total_daily_yield"`
	TotalMarketValue float64        `json:"total_market_value"`
	TopEarner        *models.Animal `json:"top_earner,omitempty"`
}

// Service exposes lightweight analytics over the zoo.
type Service struct {
	source AnimalSource
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(source AnimalSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger}
}

// Summarize aggregates the current animals.
func (s *Service) Summarize() PortfolioSummary {
	animals := s.source.Animals()

	counts := make(map[models.Rarity]int, len(models.Rarities))
	summary := PortfolioSummary{AnimalCount: len(animals)}

	for i := range animals {
		a := animals[i]
		counts[a.Rarity]++
		if a.IsHybrid {
			summary.HybridCount++
		}
		summary.TotalDailyYield += a.DailyYield
		summary.TotalMarketValue += a.MarketValue
		if summary.TopEarner == nil || a.DailyYield > summary.TopEarner.DailyYield {
			summary.TopEarner = &animals[i]
		}
	}

	summary.ByRarity = make([]RarityCount, 0, len(models.Rarities))
	for _, r := range models.Rarities {
		summary.ByRarity = append(summary.ByRarity, RarityCount{Rarity: r, Count: counts[r]})
	}
	return summary
}

// FormatSummary renders the summary as a one-line status message.
func (s *Service) FormatSummary() string {
	summary := s.Summarize()
	if summary.AnimalCount == 0 {
		return "Zoo summary: no animals yet."
	}

	parts := make([]string, 0, len(summary.ByRarity))
	for _, rc := range summary.ByRarity {
		if rc.Count == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s", rc.Count, rc.Rarity))
	}

	yield := math.Round(summary.TotalDailyYield*100) / 100
	return fmt.Sprintf("Zoo summary: %d animals (%s), %d hybrids, %.2f $ZOO/day, top earner %s.",
		summary.AnimalCount, strings.Join(parts, ", "), summary.HybridCount, yield, summary.TopEarner.Name)
}

// LogSummary writes the current summary to the service logger.
func (s *Service) LogSummary() {
	summary := s.Summarize()
	s.logger.Info("portfolio summary",
		zap.Int("animals", summary.AnimalCount),
		zap.Int("hybrids", summary.HybridCount),
		zap.Float64("total_daily_yield", summary.TotalDailyYield),
		zap.Float64("total_market_value", summary.TotalMarketValue))
}
