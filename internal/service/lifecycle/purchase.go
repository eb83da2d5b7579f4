package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
)

// BuyEgg spends price on a new egg of the given tier and switches to the zoo
// view. An unaffordable purchase posts a notice and changes nothing.
func (e *Engine) BuyEgg(ctx context.Context, tier models.EggTier, price int64) (models.Egg, error) {
	eggType, err := models.LookupEggType(tier)
	if err != nil {
		return models.Egg{}, err
	}

	egg, err := e.store.Purchase(eggType.Tier, price)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientFunds) {
			e.notices.Post(fmt.Sprintf("Insufficient $ZOO! Need %s", e.formatAmount(price)))
		}
		return models.Egg{}, err
	}

	e.SetView(models.ViewZoo)
	e.logger.Info("egg purchased", zap.String("egg_id", egg.ID), zap.String("tier", string(egg.Tier)), zap.Int64("price", price))

	e.record(ctx, models.JournalEvent{
		Type:      models.EventEggPurchased,
		SubjectID: egg.ID,
		Detail:    string(egg.Tier),
		Amount:    price,
	})
	return egg, nil
}

// BuyCatalogEgg buys an egg at its catalog price.
func (e *Engine) BuyCatalogEgg(ctx context.Context, tier models.EggTier) (models.Egg, error) {
	eggType, err := models.LookupEggType(tier)
	if err != nil {
		return models.Egg{}, err
	}
	return e.BuyEgg(ctx, eggType.Tier, eggType.Price)
}

// MarketOffer is a catalog entry annotated for the current balance.
type MarketOffer struct {
	models.EggType
	Affordable bool `json:"affordable"`
}

// Market lists the egg catalog.
func (e *Engine) Market() []MarketOffer {
	balance := e.store.Balance()
	offers := make([]MarketOffer, 0, len(models.EggTypes))
	for _, t := range models.EggTypes {
		offers = append(offers, MarketOffer{EggType: t, Affordable: balance >= t.Price})
	}
	return offers
}
