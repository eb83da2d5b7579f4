package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
	"github.com/SleepTheGod/Cryptozoo/internal/service/inventory"
)

// MetadataGenerator produces the descriptive attributes of a new creature.
type MetadataGenerator interface {
	GenerateAnimalMetadata(ctx context.Context, req models.MetadataRequest) (models.AnimalMetadata, error)
}

// ImageGenerator produces a visual reference. Implementations return a
// placeholder instead of failing.
type ImageGenerator interface {
	GenerateAnimalImage(ctx context.Context, visualPrompt string, rarity models.Rarity) string
}

// Settings tunes the cosmetic timings of the flows.
type Settings struct {
	ProgressInterval time.Duration
	ProgressStep     float64
	ProgressCap      float64
	CompleteHold     time.Duration
	NoticeTTL        time.Duration
	JournalTimeout   time.Duration
}

// DefaultSettings mirrors the reference pacing of the game.
func DefaultSettings() Settings {
	return Settings{
		ProgressInterval: 500 * time.Millisecond,
		ProgressStep:     10,
		ProgressCap:      90,
		CompleteHold:     500 * time.Millisecond,
		NoticeTTL:        3 * time.Second,
		JournalTimeout:   5 * time.Second,
	}
}

// Outcome is the terminal state of the last hatch or breed flow.
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeHatching Outcome = "HATCHING"
	OutcomeHatched  Outcome = "HATCHED"
	OutcomeBred     Outcome = "BRED"
	OutcomeFailed   Outcome = "FAILED"
)

// BreedPhase is the state of the breeding lab.
type BreedPhase string

const (
	PhaseSelectingParents BreedPhase = "SELECTING_PARENTS"
	PhaseConfirmPending   BreedPhase = "CONFIRM_PENDING"
	PhaseBreeding         BreedPhase = "BREEDING"
)

// Confirmation is what the player is asked to approve before a breed spends.
type Confirmation struct {
	Parent1ID   string `json:"parent1_id"`
	Parent2ID   string `json:"parent2_id"`
	Parent1Name string `json:"parent1_name"`
	Parent2Name string `json:"parent2_name"`
	Cost        int64  `json:"cost"`
}

// State is the read projection rendered by the presentation layer.
type State struct {
	inventory.Snapshot
	View          models.View       `json:"view"`
	HatchingEggID string            `json:"hatching_egg_id,omitempty"`
	HatchProgress float64           `json:"hatch_progress"`
	LastHatch     Outcome           `json:"last_hatch,omitempty"`
	Slots         [2]*models.Animal `json:"slots"`
	BreedPhase    BreedPhase        `json:"breed_phase"`
	LastBreed     Outcome           `json:"last_breed,omitempty"`
	PendingBreed  *Confirmation     `json:"pending_breed,omitempty"`
	Notice        string            `json:"notice,omitempty"`
}

// Engine runs the purchase, hatch and breed flows of one game session.
type Engine struct {
	store    *inventory.Store
	metadata MetadataGenerator
	images   ImageGenerator
	journal  Journal
	notices  *Notices
	settings Settings
	logger   *zap.Logger
	printer  *message.Printer
	random   func() float64

	mu            sync.Mutex
	view          models.View
	hatchingEggID string
	hatchProgress float64
	lastHatch     Outcome
	slots         [2]*models.Animal
	breedPhase    BreedPhase
	lastBreed     Outcome
	pending       *Confirmation

	flows sync.WaitGroup
}

// NewEngine wires a lifecycle engine around the given store and generators.
func NewEngine(store *inventory.Store, metadata MetadataGenerator, images ImageGenerator, journal Journal, settings Settings, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if journal == nil {
		journal = nopJournal{}
	}

	return &Engine{
		store:      store,
		metadata:   metadata,
		images:     images,
		journal:    journal,
		notices:    NewNotices(settings.NoticeTTL),
		settings:   settings,
		logger:     logger,
		printer:    message.NewPrinter(language.English),
		random:     rand.Float64,
		view:       models.ViewZoo,
		breedPhase: PhaseSelectingParents,
	}
}

// Store exposes the inventory the engine mutates.
func (e *Engine) Store() *inventory.Store {
	return e.store
}

// SetView switches the active view.
func (e *Engine) SetView(view models.View) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = view
}

// View returns the active view.
func (e *Engine) View() models.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Notice returns the current player notice, if it has not expired.
func (e *Engine) Notice() (string, bool) {
	return e.notices.Current()
}

// State returns a consistent projection of the session.
func (e *Engine) State() State {
	e.mu.Lock()
	state := State{
		View:          e.view,
		HatchingEggID: e.hatchingEggID,
		HatchProgress: e.hatchProgress,
		LastHatch:     e.lastHatch,
		BreedPhase:    e.breedPhase,
		LastBreed:     e.lastBreed,
	}
	state.Slots = e.slotsLocked()
	if e.pending != nil {
		pending := *e.pending
		state.PendingBreed = &pending
	}
	e.mu.Unlock()

	state.Snapshot = e.store.Snapshot()
	state.Notice, _ = e.notices.Current()
	return state
}

// Wait blocks until every background flow has finished.
func (e *Engine) Wait() {
	e.flows.Wait()
}

// generate runs the two external calls in order. Metadata failures and
// malformed payloads come back wrapped in ErrGenerationFailure.
func (e *Engine) generate(ctx context.Context, req models.MetadataRequest) (models.AnimalMetadata, string, error) {
	meta, err := e.metadata.GenerateAnimalMetadata(ctx, req)
	if err != nil {
		if !errors.Is(err, models.ErrGenerationFailure) {
			err = fmt.Errorf("%w: %w", models.ErrGenerationFailure, err)
		}
		return models.AnimalMetadata{}, "", err
	}
	if err := meta.Validate(); err != nil {
		return models.AnimalMetadata{}, "", err
	}

	imageURL := e.images.GenerateAnimalImage(ctx, meta.VisualPrompt, meta.Rarity)
	return meta, imageURL, nil
}

func (e *Engine) record(ctx context.Context, event models.JournalEvent) {
	event.CreatedAt = e.store.Now()
	event.Balance = e.store.Balance()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.settings.JournalTimeout)
	defer cancel()

	if err := e.journal.Record(ctx, event); err != nil {
		e.logger.Warn("failed to journal event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func (e *Engine) formatAmount(amount int64) string {
	return e.printer.Sprintf("%d", amount)
}
