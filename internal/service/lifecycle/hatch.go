package lifecycle

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
)

const hatchFailedNotice = "Hatching failed. API Error."

// Hatch turns an owned egg into an animal and blocks until the flow ends.
// Only one egg may hatch at a time.
func (e *Engine) Hatch(ctx context.Context, eggID string) (models.Animal, error) {
	egg, err := e.beginHatch(eggID)
	if err != nil {
		return models.Animal{}, err
	}
	return e.runHatch(ctx, egg)
}

// StartHatch claims the hatch slot for eggID and finishes the flow in the
// background. Guard failures are returned immediately.
func (e *Engine) StartHatch(ctx context.Context, eggID string) error {
	egg, err := e.beginHatch(eggID)
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	e.flows.Add(1)
	go func() {
		defer e.flows.Done()
		_, _ = e.runHatch(ctx, egg)
	}()
	return nil
}

func (e *Engine) beginHatch(eggID string) (models.Egg, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hatchingEggID != "" {
		return models.Egg{}, models.ErrHatchInProgress
	}

	egg, err := e.store.Egg(eggID)
	if err != nil {
		return models.Egg{}, err
	}

	e.hatchingEggID = egg.ID
	e.hatchProgress = 0
	e.lastHatch = OutcomeHatching
	return egg, nil
}

func (e *Engine) runHatch(ctx context.Context, egg models.Egg) (models.Animal, error) {
	stopTicker := e.startProgressTicker()
	defer func() {
		stopTicker()
		e.mu.Lock()
		e.hatchingEggID = ""
		e.hatchProgress = 0
		e.mu.Unlock()
	}()

	logger := e.logger.With(zap.String("egg_id", egg.ID), zap.String("tier", string(egg.Tier)))
	logger.Info("hatch started")

	meta, imageURL, err := e.generate(ctx, models.MetadataRequest{Tier: egg.Tier})
	if err != nil {
		logger.Error("hatch failed", zap.Error(err))
		e.notices.Post(hatchFailedNotice)
		e.setLastHatch(OutcomeFailed)
		e.record(ctx, models.JournalEvent{Type: models.EventHatchFailed, SubjectID: egg.ID, Detail: err.Error()})
		return models.Animal{}, err
	}

	stopTicker()
	e.setHatchProgress(100)
	e.hold(ctx, e.settings.CompleteHold)

	animal := models.NewAnimal(e.store.NewID(), meta, imageURL, nil, e.store.Now())
	e.store.HatchEgg(egg.ID, animal)
	e.setLastHatch(OutcomeHatched)

	logger.Info("egg hatched", zap.String("animal_id", animal.ID), zap.String("rarity", string(animal.Rarity)), zap.Float64("daily_yield", animal.DailyYield))
	e.record(ctx, models.JournalEvent{Type: models.EventAnimalHatched, SubjectID: animal.ID, Detail: animal.Name})
	return animal, nil
}

// startProgressTicker advances the cosmetic progress bar until the returned
// stop function is called. Stop waits for the ticker goroutine to exit.
func (e *Engine) startProgressTicker() func() {
	if e.settings.ProgressInterval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(e.settings.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				e.advanceProgress()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
}

func (e *Engine) advanceProgress() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hatchingEggID == "" {
		return
	}
	next := e.hatchProgress + e.random()*e.settings.ProgressStep
	e.hatchProgress = min(next, e.settings.ProgressCap)
}

func (e *Engine) setHatchProgress(progress float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hatchProgress = progress
}

func (e *Engine) setLastHatch(outcome Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastHatch = outcome
}

// hold pauses so a terminal progress value stays visible.
func (e *Engine) hold(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
