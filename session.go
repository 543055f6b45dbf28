package handodds

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Tab selects which calculator a Session runs
type Tab string

const (
	TabBadHand     Tab = "badHand"
	TabExpMulligan Tab = "expMulligan"
)

// Valid reports whether t names a known calculator
func (t Tab) Valid() bool { return t == TabBadHand || t == TabExpMulligan }

// BadHandPatch updates the non-nil fields of the bad-hand inputs
type BadHandPatch struct {
	Deck      *int
	Hand      *int
	GoodCount *int
	BadCount  *int
}

// MulliganPatch updates the non-nil fields of the mulligan inputs
type MulliganPatch struct {
	Deck        *int
	Hand        *int
	MarkedCount *int
}

// Snapshot is a read-only copy of a Session
type Snapshot struct {
	ID        string           `json:"id"`
	ActiveTab Tab              `json:"active_tab"`
	BadHand   BadHandParams    `json:"bad_hand"`
	Mulligan  MulliganParams   `json:"mulligan"`
	State     CalculationState `json:"state"`
}

// Session is the application state behind a calculator front end: the
// active tab, the inputs of both calculators and the lifecycle of the last
// calculation. Inputs and the active tab are persisted through an
// InputStore; the calculation state lives only as long as the Session.
type Session struct {
	id     string
	calc   *Calculator
	store  InputStore
	logger Logger

	mu         sync.Mutex
	activeTab  Tab
	badHand    BadHandParams
	mulligan   MulliganParams
	state      CalculationState
	generation uint64 // bumped whenever a pending result must be discarded
}

// NewSession restores the inputs saved under id, falling back to the
// defaults when nothing usable is stored. store may be nil to disable
// persistence.
func NewSession(ctx context.Context, id string, calc *Calculator, store InputStore, logger Logger) (*Session, error) {
	if id == "" || calc == nil {
		return nil, ErrInvalidParameters
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	s := &Session{
		id:        id,
		calc:      calc,
		store:     store,
		logger:    logger,
		activeTab: TabBadHand,
		badHand:   DefaultBadHandParams(),
		mulligan:  DefaultMulliganParams(),
		state:     IdleState(),
	}

	if store == nil {
		return s, nil
	}

	saved, err := store.Load(ctx, id)
	switch {
	case err == nil:
		s.activeTab = saved.ActiveTab
		s.badHand = saved.BadHand
		s.mulligan = saved.Mulligan
		logger.Debug("Restored session %s: tab=%s", id, saved.ActiveTab)
	case errors.Is(err, ErrStateNotFound):
		logger.Debug("No saved inputs for session %s, using defaults", id)
	default:
		logger.Error("Failed to restore session %s, using defaults: %v", id, err)
	}

	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// SetActiveTab switches calculators and returns the state to idle
func (s *Session) SetActiveTab(ctx context.Context, tab Tab) error {
	if !tab.Valid() {
		return ErrUnknownTab
	}

	s.mu.Lock()
	s.activeTab = tab
	s.resetStateLocked()
	saved := s.persistedLocked()
	s.mu.Unlock()

	return s.persist(ctx, saved)
}

// UpdateBadHandInputs merges patch into the bad-hand inputs
func (s *Session) UpdateBadHandInputs(ctx context.Context, patch BadHandPatch) error {
	s.mu.Lock()
	applyPatch(&s.badHand.Deck, patch.Deck)
	applyPatch(&s.badHand.Hand, patch.Hand)
	applyPatch(&s.badHand.GoodCount, patch.GoodCount)
	applyPatch(&s.badHand.BadCount, patch.BadCount)
	saved := s.persistedLocked()
	s.mu.Unlock()

	return s.persist(ctx, saved)
}

// UpdateMulliganInputs merges patch into the mulligan inputs
func (s *Session) UpdateMulliganInputs(ctx context.Context, patch MulliganPatch) error {
	s.mu.Lock()
	applyPatch(&s.mulligan.Deck, patch.Deck)
	applyPatch(&s.mulligan.Hand, patch.Hand)
	applyPatch(&s.mulligan.MarkedCount, patch.MarkedCount)
	saved := s.persistedLocked()
	s.mu.Unlock()

	return s.persist(ctx, saved)
}

// Calculate runs the calculator of the active tab on the current inputs and
// returns the resulting state. A tab switch or reset that happens while the
// calculation runs wins over its result.
func (s *Session) Calculate() CalculationState {
	s.mu.Lock()
	tab, badHand, mulligan := s.activeTab, s.badHand, s.mulligan
	s.generation++
	gen := s.generation
	s.state = CalculationState{Status: StatusCalculating}
	s.mu.Unlock()

	var next CalculationState
	switch tab {
	case TabExpMulligan:
		v, err := s.calc.ExpMulligan(mulligan)
		next = outcomeState(v, err, UnitTimes, DescriptionExpMulligan)
	default:
		v, err := s.calc.BadHand(badHand)
		next = outcomeState(v, err, UnitPercent, DescriptionBadHand)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return s.state
	}
	s.state = next
	if next.HasError() {
		s.logger.Debug("Session %s calculation failed: %s", s.id, next.Failure.Message)
	}
	return next
}

// ResetCalculation returns the state to idle
func (s *Session) ResetCalculation() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetStateLocked()
}

// ResetInputs restores the defaults of the active tab only
func (s *Session) ResetInputs(ctx context.Context) error {
	s.mu.Lock()
	if s.activeTab == TabBadHand {
		s.badHand = DefaultBadHandParams()
	} else {
		s.mulligan = DefaultMulliganParams()
	}
	s.resetStateLocked()
	saved := s.persistedLocked()
	s.mu.Unlock()

	return s.persist(ctx, saved)
}

// State returns the current calculation state
func (s *Session) State() CalculationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Snapshot returns a copy of the whole session
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:        s.id,
		ActiveTab: s.activeTab,
		BadHand:   s.badHand,
		Mulligan:  s.mulligan,
		State:     s.state,
	}
}

func (s *Session) resetStateLocked() {
	s.generation++
	s.state = IdleState()
}

func (s *Session) persistedLocked() *PersistedInputs {
	return &PersistedInputs{
		ActiveTab: s.activeTab,
		BadHand:   s.badHand,
		Mulligan:  s.mulligan,
		UpdatedAt: time.Now().Unix(),
	}
}

func (s *Session) persist(ctx context.Context, inputs *PersistedInputs) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, s.id, inputs)
}

func applyPatch(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
