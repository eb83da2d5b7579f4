package inventory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
)

// Store owns the balance, eggs and animals of one session. Every mutation
// funnels through it and happens under a single lock.
type Store struct {
	mu      sync.RWMutex
	balance int64
	eggs    []models.Egg
	animals []models.Animal

	now   func() time.Time
	newID func() string
}

// Snapshot is a consistent copy of the store contents.
type Snapshot struct {
	Balance         int64           `json:"balance"`
	Eggs            []models.Egg    `json:"eggs"`
	Animals         []models.Animal `json:"animals"`
	TotalDailyYield float64         `json:"total_daily_yield"`
}

// NewStore creates a store seeded with the given balance.
func NewStore(startingBalance int64) *Store {
	return &Store{
		balance: startingBalance,
		eggs:    make([]models.Egg, 0),
		animals: make([]models.Animal, 0),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// NewID returns a fresh entity id.
func (s *Store) NewID() string {
	return s.newID()
}

// Now returns the store clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// Balance returns the current balance.
func (s *Store) Balance() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Debit reduces the balance by amount, or fails without mutating anything.
func (s *Store) Debit(amount int64) error {
	if amount < 0 {
		return models.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debitLocked(amount)
}

// Credit increases the balance by amount.
func (s *Store) Credit(amount int64) error {
	if amount < 0 {
		return models.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance += amount
	return nil
}

// AddEgg appends a new egg of the given tier.
func (s *Store) AddEgg(tier models.EggTier, price int64) models.Egg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addEggLocked(tier, price)
}

// Purchase debits price and adds the egg as one step.
func (s *Store) Purchase(tier models.EggTier, price int64) (models.Egg, error) {
	if price < 0 {
		return models.Egg{}, models.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.debitLocked(price); err != nil {
		return models.Egg{}, err
	}
	return s.addEggLocked(tier, price), nil
}

// RemoveEgg drops the egg with the given id. Missing ids are ignored.
func (s *Store) RemoveEgg(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeEggLocked(id)
}

// AddAnimal prepends the animal so the newest appears first.
func (s *Store) AddAnimal(animal models.Animal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addAnimalLocked(animal)
}

// HatchEgg adds the animal and removes its source egg as one step.
func (s *Store) HatchEgg(eggID string, animal models.Animal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addAnimalLocked(animal)
	s.removeEggLocked(eggID)
}

// Egg returns the egg with the given id.
func (s *Store) Egg(id string) (models.Egg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, egg := range s.eggs {
		if egg.ID == id {
			return egg, nil
		}
	}
	return models.Egg{}, fmt.Errorf("%w: %s", models.ErrEggNotFound, id)
}

// Animal returns the animal with the given id.
func (s *Store) Animal(id string) (models.Animal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, animal := range s.animals {
		if animal.ID == id {
			return animal.Clone(), nil
		}
	}
	return models.Animal{}, fmt.Errorf("%w: %s", models.ErrAnimalNotFound, id)
}

// Eggs lists eggs in purchase order.
func (s *Store) Eggs() []models.Egg {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Egg(nil), s.eggs...)
}

// Animals lists animals newest first.
func (s *Store) Animals() []models.Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAnimals(s.animals)
}

// AnimalCount returns the number of owned animals.
func (s *Store) AnimalCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.animals)
}

// TotalDailyYield sums the daily yield of every owned animal.
func (s *Store) TotalDailyYield() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalYield(s.animals)
}

// Snapshot returns a consistent copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Balance:         s.balance,
		Eggs:            append([]models.Egg{}, s.eggs...),
		Animals:         cloneAnimals(s.animals),
		TotalDailyYield: totalYield(s.animals),
	}
}

func (s *Store) debitLocked(amount int64) error {
	if s.balance < amount {
		return fmt.Errorf("%w: need %d, have %d", models.ErrInsufficientFunds, amount, s.balance)
	}
	s.balance -= amount
	return nil
}

func (s *Store) addEggLocked(tier models.EggTier, price int64) models.Egg {
	egg := models.Egg{
		ID:            s.newID(),
		Tier:          tier,
		PurchasePrice: price,
		PurchasedAt:   s.now(),
	}
	s.eggs = append(s.eggs, egg)
	return egg
}

func (s *Store) removeEggLocked(id string) {
	for i, egg := range s.eggs {
		if egg.ID == id {
			s.eggs = append(s.eggs[:i:i], s.eggs[i+1:]...)
			return
		}
	}
}

func (s *Store) addAnimalLocked(animal models.Animal) {
	s.animals = append([]models.Animal{animal.Clone()}, s.animals...)
}

func cloneAnimals(in []models.Animal) []models.Animal {
	out := make([]models.Animal, 0, len(in))
	for _, a := range in {
		out = append(out, a.Clone())
	}
	return out
}

func totalYield(animals []models.Animal) float64 {
	var total float64
	for _, a := range animals {
		total += a.DailyYield
	}
	return total
}
