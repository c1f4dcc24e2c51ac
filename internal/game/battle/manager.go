package battle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskfall/internal/game/board"
	"github.com/cory-johannsen/duskfall/internal/game/character"
	"github.com/cory-johannsen/duskfall/internal/game/condition"
	"github.com/cory-johannsen/duskfall/internal/game/turn"
)

var (
	// ErrNotFound is returned for an unknown battle id.
	ErrNotFound = errors.New("battle not found")
	// ErrTooManyBattles is returned when the manager is at capacity.
	ErrTooManyBattles = errors.New("too many active battles")
	// ErrInvalidSetup is returned when a battle cannot start from the given state.
	ErrInvalidSetup = errors.New("invalid battle setup")
)

// Setup is the initial state of a new battle.
type Setup struct {
	Hero  *character.Hero `json:"hero"`
	Board *board.Board    `json:"board"`
}

// RoundListener is notified after every resolved round.
type RoundListener func(battleID string, r Round)

// EndListener is notified once when a battle becomes inactive.
type EndListener func(battleID string, v View)

// DefaultRetention is how long a finished battle stays readable.
const DefaultRetention = 15 * time.Minute

// Manager holds all live battles keyed by id. Finished battles stay
// readable for the retention period but do not count against capacity.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	battles  map[string]*Battle
	finished map[string]time.Time

	registry    *condition.Registry
	logger      *zap.Logger
	maxBattles  int
	retention   time.Duration
	listener    RoundListener
	endListener EndListener
	now         func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxBattles caps the number of live battles; 0 means unlimited.
func WithMaxBattles(n int) Option { return func(m *Manager) { m.maxBattles = n } }

// WithRoundListener registers a callback for resolved rounds.
func WithRoundListener(l RoundListener) Option { return func(m *Manager) { m.listener = l } }

// WithEndListener registers a callback for battles that end.
func WithEndListener(l EndListener) Option { return func(m *Manager) { m.endListener = l } }

// WithRetention sets how long finished battles stay readable.
func WithRetention(d time.Duration) Option { return func(m *Manager) { m.retention = d } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// NewManager creates an empty Manager.
//
// Precondition: reg and logger are non-nil.
func NewManager(reg *condition.Registry, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		battles:   make(map[string]*Battle),
		finished:  make(map[string]time.Time),
		registry:  reg,
		logger:    logger,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start creates a battle from a deep copy of setup.
//
// Postcondition: the returned battle is active, in turn 1, player phase.
func (m *Manager) Start(setup Setup) (*Battle, error) {
	if setup.Hero == nil || setup.Board == nil {
		return nil, fmt.Errorf("%w: hero and board are required", ErrInvalidSetup)
	}
	if err := setup.Hero.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}
	if setup.Hero.IsDown() {
		return nil, fmt.Errorf("%w: hero is down", ErrInvalidSetup)
	}
	if err := setup.Board.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetup, err)
	}
	if len(setup.Board.LivingEnemies()) == 0 {
		return nil, fmt.Errorf("%w: no living enemies", ErrInvalidSetup)
	}
	hero := setup.Hero.Clone()
	hero.DefenseStance = false
	b := setup.Board.Clone()
	ctrl, err := turn.NewController(b, m.registry)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked()
	if m.maxBattles > 0 && m.activeLocked() >= m.maxBattles {
		return nil, ErrTooManyBattles
	}
	id := uuid.NewString()
	bt := &Battle{
		id:        id,
		active:    true,
		hero:      hero,
		board:     b,
		ctrl:      ctrl,
		createdAt: m.now(),
		logger:    m.logger.With(zap.String("battle_id", id)),
		onRound:   m.listener,
		onEnd:     m.ended,
		now:       m.now,
	}
	m.battles[id] = bt
	bt.logger.Info("battle started",
		zap.String("hero", hero.Name),
		zap.Int("enemies", len(b.Enemies)),
	)
	return bt, nil
}

// Get returns the battle with id.
func (m *Manager) Get(id string) (*Battle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.battles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return b, nil
}

// End deactivates the battle and removes it from the manager.
func (m *Manager) End(id string) (View, error) {
	m.mu.Lock()
	b, ok := m.battles[id]
	delete(m.battles, id)
	delete(m.finished, id)
	m.mu.Unlock()
	if !ok {
		return View{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	b.End()
	return b.View(), nil
}

// Len returns the number of stored battles, finished ones included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.battles)
}

// Active returns the number of battles still in progress.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeLocked()
}

func (m *Manager) activeLocked() int {
	return len(m.battles) - len(m.finished)
}

// ended runs under the battle's lock; the manager never takes a battle lock
// while holding its own.
func (m *Manager) ended(id string, v View) {
	m.mu.Lock()
	if _, ok := m.battles[id]; ok {
		m.finished[id] = m.now()
	}
	m.mu.Unlock()
	if m.endListener != nil {
		m.endListener(id, v)
	}
}

// pruneLocked drops finished battles older than the retention period.
func (m *Manager) pruneLocked() {
	now := m.now()
	for id, at := range m.finished {
		if now.Sub(at) >= m.retention {
			delete(m.battles, id)
			delete(m.finished, id)
			m.logger.Debug("finished battle evicted", zap.String("battle_id", id))
		}
	}
}
