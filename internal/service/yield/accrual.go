package yield

import (
	"math"
	"sync"

	"go.uber.org/zap"
)

// Ledger is the slice of the inventory the accrual loop reads and credits.
type Ledger interface {
	AnimalCount() int
	TotalDailyYield() float64
	Credit(amount int64) error
}

// Accrual credits passive income proportional to the current total daily
// yield. It reads the ledger fresh on every tick.
type Accrual struct {
	ledger Ledger
	rate   float64
	logger *zap.Logger

	mu      sync.Mutex
	accrued int64
}

// NewAccrual creates an accrual loop crediting rate * total daily yield per tick.
func NewAccrual(ledger Ledger, rate float64, logger *zap.Logger) *Accrual {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accrual{ledger: ledger, rate: rate, logger: logger}
}

// Tick credits one period of yield and returns the credited amount.
func (a *Accrual) Tick() int64 {
	if a.ledger.AnimalCount() == 0 {
		return 0
	}

	total := a.ledger.TotalDailyYield()
	amount := int64(math.Floor(total * a.rate))
	if amount <= 0 {
		return 0
	}

	if err := a.ledger.Credit(amount); err != nil {
		a.logger.Error("failed to credit yield", zap.Int64("amount", amount), zap.Error(err))
		return 0
	}

	a.mu.Lock()
	a.accrued += amount
	a.mu.Unlock()

	a.logger.Debug("yield credited", zap.Int64("amount", amount), zap.Float64("total_daily_yield", total))
	return amount
}

// Accrued returns the running total credited since start.
func (a *Accrual) Accrued() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.accrued
}
