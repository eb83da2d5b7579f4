package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SleepTheGod/Cryptozoo/internal/domain/models"
	"github.com/SleepTheGod/Cryptozoo/internal/service/inventory"
	"github.com/SleepTheGod/Cryptozoo/internal/service/yield"
)

// -------------------------
// Fakes
// -------------------------

type fakeMetadata struct {
	mu       sync.Mutex
	meta     models.AnimalMetadata
	err      error
	requests []models.MetadataRequest

	started chan struct{}
	release chan struct{}
}

func (f *fakeMetadata) GenerateAnimalMetadata(ctx context.Context, req models.MetadataRequest) (models.AnimalMetadata, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	started, release := f.started, f.release
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return models.AnimalMetadata{}, ctx.Err()
		}
	}
	return f.meta, f.err
}

func (f *fakeMetadata) calls() []models.MetadataRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.MetadataRequest(nil), f.requests...)
}

type fakeImages struct {
	mu      sync.Mutex
	prompts []string
}

func (f *fakeImages) GenerateAnimalImage(_ context.Context, visualPrompt string, rarity models.Rarity) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, visualPrompt)
	return "img://" + string(rarity) + "/" + visualPrompt
}

type fakeJournal struct {
	mu     sync.Mutex
	events []models.JournalEvent
}

func (f *fakeJournal) Record(_ context.Context, event models.JournalEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeJournal) types() []models.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.EventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

func creature(name string, dailyYield float64) models.AnimalMetadata {
	return models.AnimalMetadata{
		Name:         name,
		Description:  "test creature",
		Rarity:       models.RarityRare,
		DailyYield:   dailyYield,
		MarketValue:  100,
		VisualPrompt: "a " + name,
		Traits: []models.TraitValue{
			{Name: "Strength", Value: 10},
			{Name: "Speed", Value: 20},
			{Name: "Memeability", Value: 30},
			{Name: "Aura", Value: 40},
		},
	}
}

func testSettings() Settings {
	return Settings{
		ProgressStep:   10,
		ProgressCap:    90,
		NoticeTTL:      time.Minute,
		JournalTimeout: time.Second,
	}
}

type harness struct {
	store    *inventory.Store
	metadata *fakeMetadata
	images   *fakeImages
	journal  *fakeJournal
	engine   *Engine
}

func newHarness(balance int64) *harness {
	h := &harness{
		store:    inventory.NewStore(balance),
		metadata: &fakeMetadata{meta: creature("Neon Capy", 500)},
		images:   &fakeImages{},
		journal:  &fakeJournal{},
	}
	h.engine = NewEngine(h.store, h.metadata, h.images, h.journal, testSettings(), nil)
	return h
}

func (h *harness) seedAnimal(id, name string) models.Animal {
	a := models.Animal{ID: id, Name: name, Rarity: models.RarityEpic, DailyYield: 100}
	h.store.AddAnimal(a)
	return a
}

func notice(t *testing.T, e *Engine) string {
	t.Helper()
	msg, ok := e.Notice()
	if !ok {
		t.Fatal("expected a notice")
	}
	return msg
}

// -------------------------
// Purchase
// -------------------------

func TestBuyHatchAndAccrueScenario(t *testing.T) {
	h := newHarness(models.StartingBalance)
	h.engine.SetView(models.ViewMarket)

	egg, err := h.engine.BuyEgg(context.Background(), models.TierBasic, 2000)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if got := h.store.Balance(); got != 23000 {
		t.Fatalf("expected balance 23000, got %d", got)
	}
	if eggs := h.store.Eggs(); len(eggs) != 1 || eggs[0].Tier != models.TierBasic {
		t.Fatalf("unexpected eggs: %+v", eggs)
	}
	if v := h.engine.View(); v != models.ViewZoo {
		t.Fatalf("expected zoo view after purchase, got %s", v)
	}

	animal, err := h.engine.Hatch(context.Background(), egg.ID)
	if err != nil {
		t.Fatalf("hatch: %v", err)
	}
	if animal.IsHybrid || animal.Parents != nil {
		t.Fatalf("hatched animal must not be hybrid: %+v", animal)
	}
	if len(h.store.Eggs()) != 0 || h.store.AnimalCount() != 1 {
		t.Fatalf("expected egg swapped for animal, got %+v", h.store.Snapshot())
	}

	accrual := yield.NewAccrual(h.store, models.YieldTickRate, nil)
	if credited := accrual.Tick(); credited != 25 {
		t.Fatalf("expected tick of 25, got %d", credited)
	}
	if got := h.store.Balance(); got != 23025 {
		t.Fatalf("expected balance 23025, got %d", got)
	}

	got := h.journal.types()
	want := []models.EventType{models.EventEggPurchased, models.EventAnimalHatched}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected journal: %v", got)
	}
}

func TestBuyEggInsufficientFunds(t *testing.T) {
	h := newHarness(1000)
	h.engine.SetView(models.ViewMarket)

	_, err := h.engine.BuyEgg(context.Background(), models.TierBasic, 2000)
	if !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := h.store.Balance(); got != 1000 {
		t.Fatalf("balance changed to %d", got)
	}
	if len(h.store.Eggs()) != 0 {
		t.Fatal("egg created despite failed purchase")
	}
	if v := h.engine.View(); v != models.ViewMarket {
		t.Fatalf("view changed to %s", v)
	}
	if msg := notice(t, h.engine); msg != "Insufficient $ZOO! Need 2,000" {
		t.Fatalf("unexpected notice %q", msg)
	}
}

func TestBuyCatalogEgg(t *testing.T) {
	h := newHarness(models.StartingBalance)

	egg, err := h.engine.BuyCatalogEgg(context.Background(), models.TierSilver)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if egg.PurchasePrice != 8000 || h.store.Balance() != 17000 {
		t.Fatalf("unexpected purchase %+v, balance %d", egg, h.store.Balance())
	}

	if _, err := h.engine.BuyCatalogEgg(context.Background(), "Platinum"); !errors.Is(err, models.ErrUnknownTier) {
		t.Fatalf("expected ErrUnknownTier, got %v", err)
	}
}

func TestMarketAffordability(t *testing.T) {
	h := newHarness(models.StartingBalance)

	offers := h.engine.Market()
	if len(offers) != 4 {
		t.Fatalf("expected 4 offers, got %d", len(offers))
	}
	for _, o := range offers {
		want := o.Price <= models.StartingBalance
		if o.Affordable != want {
			t.Fatalf("%s affordable = %v, want %v", o.Tier, o.Affordable, want)
		}
	}
}

// -------------------------
// Hatch
// -------------------------

func TestHatchFailureKeepsEgg(t *testing.T) {
	h := newHarness(models.StartingBalance)
	h.metadata.err = errors.New("upstream exploded")
	egg, err := h.engine.BuyEgg(context.Background(), models.TierGold, 25000)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if _, err := h.engine.Hatch(context.Background(), egg.ID); !errors.Is(err, models.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}

	snap := h.store.Snapshot()
	if len(snap.Eggs) != 1 || snap.Eggs[0].ID != egg.ID || len(snap.Animals) != 0 {
		t.Fatalf("unexpected inventory after failed hatch: %+v", snap)
	}
	if snap.Balance != 0 {
		t.Fatalf("egg price must not be refunded, balance %d", snap.Balance)
	}

	state := h.engine.State()
	if state.HatchingEggID != "" || state.HatchProgress != 0 || state.LastHatch != OutcomeFailed {
		t.Fatalf("hatch state not reset: %+v", state)
	}
	if msg := notice(t, h.engine); msg != hatchFailedNotice {
		t.Fatalf("unexpected notice %q", msg)
	}
	if len(h.images.prompts) != 0 {
		t.Fatal("image generator called after metadata failure")
	}
}

func TestHatchRejectsMalformedMetadata(t *testing.T) {
	h := newHarness(models.StartingBalance)
	bad := creature("Glitch", 10)
	bad.Rarity = "Shiny"
	h.metadata.meta = bad
	egg := h.store.AddEgg(models.TierBasic, 2000)

	if _, err := h.engine.Hatch(context.Background(), egg.ID); !errors.Is(err, models.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}
	if len(h.store.Eggs()) != 1 {
		t.Fatal("egg removed after malformed metadata")
	}
}

func TestHatchUnknownEgg(t *testing.T) {
	h := newHarness(models.StartingBalance)

	if _, err := h.engine.Hatch(context.Background(), "missing"); !errors.Is(err, models.ErrEggNotFound) {
		t.Fatalf("expected ErrEggNotFound, got %v", err)
	}

	egg := h.store.AddEgg(models.TierBasic, 2000)
	if _, err := h.engine.Hatch(context.Background(), egg.ID); err != nil {
		t.Fatalf("hatch after unknown egg: %v", err)
	}
}

func TestOnlyOneEggHatchesAtATime(t *testing.T) {
	h := newHarness(models.StartingBalance)
	h.metadata.started = make(chan struct{}, 1)
	h.metadata.release = make(chan struct{})

	first := h.store.AddEgg(models.TierBasic, 2000)
	second := h.store.AddEgg(models.TierSilver, 8000)

	if err := h.engine.StartHatch(context.Background(), first.ID); err != nil {
		t.Fatalf("start hatch: %v", err)
	}
	<-h.metadata.started

	if err := h.engine.StartHatch(context.Background(), second.ID); !errors.Is(err, models.ErrHatchInProgress) {
		t.Fatalf("expected ErrHatchInProgress, got %v", err)
	}
	if got := h.engine.State().HatchingEggID; got != first.ID {
		t.Fatalf("expected %s hatching, got %q", first.ID, got)
	}

	close(h.metadata.release)
	h.engine.Wait()

	eggs := h.store.Eggs()
	if len(eggs) != 1 || eggs[0].ID != second.ID {
		t.Fatalf("expected only the second egg left, got %+v", eggs)
	}
	if h.engine.State().HatchingEggID != "" {
		t.Fatal("hatch marker not cleared")
	}

	h.metadata.mu.Lock()
	h.metadata.started = nil
	h.metadata.mu.Unlock()
	if _, err := h.engine.Hatch(context.Background(), second.ID); err != nil {
		t.Fatalf("second hatch: %v", err)
	}
	if h.store.AnimalCount() != 2 {
		t.Fatalf("expected 2 animals, got %d", h.store.AnimalCount())
	}
}

func TestHatchProgressIsCappedUntilResult(t *testing.T) {
	h := newHarness(models.StartingBalance)
	h.engine.settings.ProgressInterval = time.Millisecond
	h.engine.random = func() float64 { return 1 }
	h.metadata.started = make(chan struct{}, 1)
	h.metadata.release = make(chan struct{})
	egg := h.store.AddEgg(models.TierBasic, 2000)

	if err := h.engine.StartHatch(context.Background(), egg.ID); err != nil {
		t.Fatalf("start hatch: %v", err)
	}
	<-h.metadata.started

	deadline := time.Now().Add(2 * time.Second)
	for h.engine.State().HatchProgress < 90 {
		if time.Now().After(deadline) {
			t.Fatalf("progress stuck at %v", h.engine.State().HatchProgress)
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	if p := h.engine.State().HatchProgress; p != 90 {
		t.Fatalf("progress exceeded cap: %v", p)
	}

	close(h.metadata.release)
	h.engine.Wait()

	state := h.engine.State()
	if state.HatchProgress != 0 || state.LastHatch != OutcomeHatched {
		t.Fatalf("unexpected final state: %+v", state)
	}
}

// -------------------------
// Breeding
// -------------------------

func TestToggleSelection(t *testing.T) {
	h := newHarness(models.StartingBalance)
	h.seedAnimal("a", "Lion")
	h.seedAnimal("b", "Frog")
	h.seedAnimal("c", "Shark")

	steps := []struct {
		id   string
		want [2]string
	}{
		{"a", [2]string{"a", ""}},
		{"b", [2]string{"a", "b"}},
		{"c", [2]string{"a", "b"}},
		{"a", [2]string{"", "b"}},
		{"c", [2]string{"c", "b"}},
		{"b", [2]string{"c", ""}},
	}

	for i, step := range steps {
		slots, err := h.engine.ToggleSelection(step.id)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		for j := range slots {
			got := ""
			if slots[j] != nil {
				got = slots[j].ID
			}
			if got != step.want[j] {
				t.Fatalf("step %d slot %d: got %q want %q", i, j, got, step.want[j])
			}
		}
	}

	if _, err := h.engine.ToggleSelection("missing"); !errors.Is(err, models.ErrAnimalNotFound) {
		t.Fatalf("expected ErrAnimalNotFound, got %v", err)
	}
}

func TestClearSlot(t *testing.T) {
	h := newHarness(models.StartingBalance)
	h.seedAnimal("a", "Lion")
	if _, err := h.engine.ToggleSelection("a"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	slots, err := h.engine.ClearSlot(0)
	if err != nil || slots[0] != nil {
		t.Fatalf("clear slot: %v %+v", err, slots)
	}
	if _, err := h.engine.ClearSlot(2); !errors.Is(err, models.ErrSlotOutOfRange) {
		t.Fatalf("expected ErrSlotOutOfRange, got %v", err)
	}
}

func TestBreedGuards(t *testing.T) {
	h := newHarness(models.StartingBalance)
	h.seedAnimal("a", "Lion")

	if _, err := h.engine.ConfirmBreed(context.Background()); !errors.Is(err, models.ErrNoPendingBreed) {
		t.Fatalf("expected ErrNoPendingBreed, got %v", err)
	}

	if _, err := h.engine.ToggleSelection("a"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := h.engine.InitiateBreed(); !errors.Is(err, models.ErrParentsNotSelected) {
		t.Fatalf("expected ErrParentsNotSelected, got %v", err)
	}
	if got := h.store.Balance(); got != models.StartingBalance {
		t.Fatalf("balance changed to %d", got)
	}
}

func selectPair(t *testing.T, h *harness) (models.Animal, models.Animal) {
	t.Helper()
	p1 := h.seedAnimal("p1", "Lion")
	p2 := h.seedAnimal("p2", "Frog")
	for _, id := range []string{"p1", "p2"} {
		if _, err := h.engine.ToggleSelection(id); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}
	return p1, p2
}

func TestBreedSuccess(t *testing.T) {
	h := newHarness(10000)
	h.metadata.meta = creature("Lionfrog", 4000)
	p1, p2 := selectPair(t, h)
	h.engine.SetView(models.ViewLab)

	conf, err := h.engine.InitiateBreed()
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if conf.Parent1Name != "Lion" || conf.Parent2Name != "Frog" || conf.Cost != models.BreedingCost {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
	if h.store.Balance() != 10000 {
		t.Fatal("initiating a breed must not spend")
	}
	if h.engine.State().BreedPhase != PhaseConfirmPending {
		t.Fatal("expected confirm pending phase")
	}

	hybrid, err := h.engine.ConfirmBreed(context.Background())
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !hybrid.IsHybrid || len(hybrid.Parents) != 2 || hybrid.Parents[0] != "Lion" || hybrid.Parents[1] != "Frog" {
		t.Fatalf("unexpected hybrid: %+v", hybrid)
	}
	for _, tr := range hybrid.Traits {
		if tr.Max != models.TraitMax {
			t.Fatalf("trait %s not annotated", tr.Name)
		}
	}

	if got := h.store.Balance(); got != 5000 {
		t.Fatalf("expected balance 5000, got %d", got)
	}
	animals := h.store.Animals()
	if len(animals) != 3 || animals[0].ID != hybrid.ID {
		t.Fatalf("expected hybrid prepended to 3 animals, got %+v", animals)
	}
	for _, parent := range []models.Animal{p1, p2} {
		got, err := h.store.Animal(parent.ID)
		if err != nil {
			t.Fatalf("parent %s missing: %v", parent.ID, err)
		}
		if got.Name != parent.Name || got.DailyYield != parent.DailyYield || got.IsHybrid {
			t.Fatalf("parent %s changed: %+v", parent.ID, got)
		}
	}

	calls := h.metadata.calls()
	if len(calls) != 1 || calls[0].Tier != models.HybridTier || calls[0].Parent1Name != "Lion" || calls[0].Parent2Name != "Frog" {
		t.Fatalf("unexpected metadata request: %+v", calls)
	}

	state := h.engine.State()
	if state.Slots[0] != nil || state.Slots[1] != nil {
		t.Fatal("selection not cleared after breed")
	}
	if state.View != models.ViewZoo || state.BreedPhase != PhaseSelectingParents || state.LastBreed != OutcomeBred {
		t.Fatalf("unexpected state after breed: %+v", state)
	}
}

func TestBreedInsufficientFunds(t *testing.T) {
	h := newHarness(4000)
	selectPair(t, h)

	if _, err := h.engine.InitiateBreed(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := h.engine.ConfirmBreed(context.Background()); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if got := h.store.Balance(); got != 4000 {
		t.Fatalf("balance changed to %d", got)
	}
	if h.store.AnimalCount() != 2 {
		t.Fatal("animal created despite insufficient funds")
	}
	if len(h.metadata.calls()) != 0 {
		t.Fatal("generator called despite insufficient funds")
	}
	if phase := h.engine.State().BreedPhase; phase != PhaseSelectingParents {
		t.Fatalf("expected selecting parents, got %s", phase)
	}
	if msg := notice(t, h.engine); msg != "Need 5000 $ZOO to breed!" {
		t.Fatalf("unexpected notice %q", msg)
	}
}

func TestBreedFailureRefunds(t *testing.T) {
	h := newHarness(10000)
	h.metadata.err = errors.New("model overloaded")
	p1, p2 := selectPair(t, h)

	if _, err := h.engine.InitiateBreed(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := h.engine.ConfirmBreed(context.Background()); !errors.Is(err, models.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}

	if got := h.store.Balance(); got != 10000 {
		t.Fatalf("expected refund to 10000, got %d", got)
	}
	if h.store.AnimalCount() != 2 {
		t.Fatalf("expected only the parents, got %d animals", h.store.AnimalCount())
	}
	for _, parent := range []models.Animal{p1, p2} {
		if _, err := h.store.Animal(parent.ID); err != nil {
			t.Fatalf("parent %s missing: %v", parent.ID, err)
		}
	}

	state := h.engine.State()
	if state.BreedPhase != PhaseSelectingParents || state.LastBreed != OutcomeFailed {
		t.Fatalf("unexpected state after failed breed: %+v", state)
	}
	if msg := notice(t, h.engine); msg != breedFailedNotice {
		t.Fatalf("unexpected notice %q", msg)
	}

	got := h.journal.types()
	if len(got) != 1 || got[0] != models.EventBreedFailed {
		t.Fatalf("unexpected journal: %v", got)
	}
}

func TestCancelBreed(t *testing.T) {
	h := newHarness(10000)
	selectPair(t, h)

	if _, err := h.engine.InitiateBreed(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := h.engine.CancelBreed(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := h.engine.CancelBreed(); !errors.Is(err, models.ErrNoPendingBreed) {
		t.Fatalf("expected ErrNoPendingBreed, got %v", err)
	}

	state := h.engine.State()
	if state.PendingBreed != nil || state.BreedPhase != PhaseSelectingParents || state.Balance != 10000 {
		t.Fatalf("unexpected state after cancel: %+v", state)
	}
	if _, err := h.engine.ConfirmBreed(context.Background()); !errors.Is(err, models.ErrNoPendingBreed) {
		t.Fatalf("expected ErrNoPendingBreed, got %v", err)
	}
}

func TestSecondBreedBlockedWhileBreeding(t *testing.T) {
	h := newHarness(20000)
	h.metadata.started = make(chan struct{}, 1)
	h.metadata.release = make(chan struct{})
	selectPair(t, h)

	if _, err := h.engine.InitiateBreed(); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := h.engine.StartBreed(context.Background()); err != nil {
		t.Fatalf("start breed: %v", err)
	}
	<-h.metadata.started

	if got := h.store.Balance(); got != 15000 {
		t.Fatalf("expected cost debited before generation, balance %d", got)
	}
	if _, err := h.engine.InitiateBreed(); !errors.Is(err, models.ErrBreedInProgress) {
		t.Fatalf("expected ErrBreedInProgress, got %v", err)
	}
	if err := h.engine.StartBreed(context.Background()); !errors.Is(err, models.ErrBreedInProgress) {
		t.Fatalf("expected ErrBreedInProgress, got %v", err)
	}

	close(h.metadata.release)
	h.engine.Wait()

	if h.store.AnimalCount() != 3 {
		t.Fatalf("expected hybrid minted, got %d animals", h.store.AnimalCount())
	}
}

// -------------------------
// Notices
// -------------------------

func TestNoticesExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := NewNotices(3 * time.Second)
	n.now = func() time.Time { return now }

	if _, ok := n.Current(); ok {
		t.Fatal("expected no notice")
	}

	n.Post("first")
	now = now.Add(2 * time.Second)
	n.Post("second")

	now = now.Add(2 * time.Second)
	if msg, ok := n.Current(); !ok || msg != "second" {
		t.Fatalf("expected second notice, got %q %v", msg, ok)
	}

	now = now.Add(time.Second)
	if _, ok := n.Current(); ok {
		t.Fatal("notice did not expire")
	}
}
