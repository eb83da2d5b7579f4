package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
)

const breedFailedNotice = "Breeding failed."

// ToggleSelection adds or removes an animal from the two breeding slots.
// Clicking a selected animal frees its slot, a new animal fills the first free
// slot, and a click while both slots are taken by others does nothing.
func (e *Engine) ToggleSelection(animalID string) ([2]*models.Animal, error) {
	animal, err := e.store.Animal(animalID)
	if err != nil {
		return [2]*models.Animal{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.slots[0] != nil && e.slots[0].ID == animalID:
		e.slots[0] = nil
	case e.slots[1] != nil && e.slots[1].ID == animalID:
		e.slots[1] = nil
	case e.slots[0] == nil:
		e.slots[0] = &animal
	case e.slots[1] == nil:
		e.slots[1] = &animal
	}
	return e.slotsLocked(), nil
}

// ClearSlot empties one breeding slot.
func (e *Engine) ClearSlot(slot int) ([2]*models.Animal, error) {
	if slot < 0 || slot > 1 {
		return [2]*models.Animal{}, fmt.Errorf("%w: %d", models.ErrSlotOutOfRange, slot)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.slots[slot] = nil
	return e.slotsLocked(), nil
}

// InitiateBreed asks for confirmation of the selected pair. Nothing is spent.
func (e *Engine) InitiateBreed() (Confirmation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.breedPhase == PhaseBreeding {
		return Confirmation{}, models.ErrBreedInProgress
	}

	p1, p2 := e.slots[0], e.slots[1]
	if p1 == nil || p2 == nil || p1.ID == p2.ID {
		return Confirmation{}, models.ErrParentsNotSelected
	}

	conf := Confirmation{
		Parent1ID:   p1.ID,
		Parent2ID:   p2.ID,
		Parent1Name: p1.Name,
		Parent2Name: p2.Name,
		Cost:        models.BreedingCost,
	}
	e.pending = &conf
	e.breedPhase = PhaseConfirmPending
	return conf, nil
}

// CancelBreed dismisses a pending confirmation.
func (e *Engine) CancelBreed() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.breedPhase != PhaseConfirmPending {
		return models.ErrNoPendingBreed
	}
	e.pending = nil
	e.breedPhase = PhaseSelectingParents
	return nil
}

// ConfirmBreed spends the breeding cost and mints a hybrid of the confirmed
// pair, blocking until the flow ends. A failed generation refunds the cost.
func (e *Engine) ConfirmBreed(ctx context.Context) (models.Animal, error) {
	conf, err := e.beginBreed()
	if err != nil {
		return models.Animal{}, err
	}
	return e.runBreed(ctx, conf)
}

// StartBreed is ConfirmBreed with the generation step run in the background.
func (e *Engine) StartBreed(ctx context.Context) error {
	conf, err := e.beginBreed()
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	e.flows.Add(1)
	go func() {
		defer e.flows.Done()
		_, _ = e.runBreed(ctx, conf)
	}()
	return nil
}

func (e *Engine) beginBreed() (Confirmation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.breedPhase {
	case PhaseBreeding:
		return Confirmation{}, models.ErrBreedInProgress
	case PhaseConfirmPending:
	default:
		return Confirmation{}, models.ErrNoPendingBreed
	}

	conf := *e.pending
	e.pending = nil

	if err := e.store.Debit(conf.Cost); err != nil {
		e.breedPhase = PhaseSelectingParents
		if errors.Is(err, models.ErrInsufficientFunds) {
			e.notices.Post(fmt.Sprintf("Need %d $ZOO to breed!", conf.Cost))
		}
		return Confirmation{}, err
	}

	e.breedPhase = PhaseBreeding
	return conf, nil
}

func (e *Engine) runBreed(ctx context.Context, conf Confirmation) (models.Animal, error) {
	defer func() {
		e.mu.Lock()
		e.breedPhase = PhaseSelectingParents
		e.mu.Unlock()
	}()

	logger := e.logger.With(zap.String("parent1", conf.Parent1ID), zap.String("parent2", conf.Parent2ID))
	logger.Info("breeding started", zap.Int64("cost", conf.Cost))

	req := models.MetadataRequest{
		Tier:        models.HybridTier,
		Parent1Name: conf.Parent1Name,
		Parent2Name: conf.Parent2Name,
	}
	meta, imageURL, err := e.generate(ctx, req)
	if err != nil {
		logger.Error("breeding failed", zap.Error(err))
		if creditErr := e.store.Credit(conf.Cost); creditErr != nil {
			logger.Error("failed to refund breeding cost", zap.Error(creditErr))
		}
		e.notices.Post(breedFailedNotice)
		e.setLastBreed(OutcomeFailed)
		e.record(ctx, models.JournalEvent{Type: models.EventBreedFailed, Detail: err.Error(), Amount: conf.Cost})
		return models.Animal{}, err
	}

	parents := []string{conf.Parent1Name, conf.Parent2Name}
	hybrid := models.NewAnimal(e.store.NewID(), meta, imageURL, parents, e.store.Now())
	e.store.AddAnimal(hybrid)

	e.mu.Lock()
	e.slots = [2]*models.Animal{}
	e.view = models.ViewZoo
	e.lastBreed = OutcomeBred
	e.mu.Unlock()

	logger.Info("hybrid bred", zap.String("animal_id", hybrid.ID), zap.String("rarity", string(hybrid.Rarity)))
	e.record(ctx, models.JournalEvent{Type: models.EventHybridBred, SubjectID: hybrid.ID, Detail: hybrid.Name, Amount: conf.Cost})
	return hybrid, nil
}

func (e *Engine) setLastBreed(outcome Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastBreed = outcome
}

func (e *Engine) slotsLocked() [2]*models.Animal {
	var out [2]*models.Animal
	for i, a := range e.slots {
		if a != nil {
			clone := a.Clone()
			out[i] = &clone
		}
	}
	return out
}
