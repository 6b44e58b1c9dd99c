// Package service runs user actions against the engine one at a time:
// load the state once, mutate it in memory, save it in full after every
// change.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	inventory "github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000"
	"github.com/muhammadasimdatascience-ship-it/HMD-Solutions-sub000/config"
)

const moduleName = "service"

type Session struct {
	mu      sync.Mutex
	store   inventory.Store
	state   *inventory.State
	catalog *inventory.FormulaCatalog
	policy  inventory.CostPolicy
	logger  *logrus.Logger
	now     func() time.Time
}

type Option func(*Session)

func WithCatalog(c *inventory.FormulaCatalog) Option {
	return func(s *Session) { s.catalog = c }
}

func WithCostPolicy(p inventory.CostPolicy) Option {
	return func(s *Session) { s.policy = p }
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Open loads the persisted state, or starts an empty one with defaults
// when the store has never been saved.
func Open(ctx context.Context, store inventory.Store, defaults inventory.Settings, opts ...Option) (*Session, error) {
	s := &Session{
		store:   store,
		catalog: inventory.DefaultCatalog(),
		policy:  inventory.DefaultCostPolicy(),
		logger:  logrus.StandardLogger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := store.Load(ctx)
	switch {
	case errors.Is(err, inventory.ErrNoState):
		s.logger.WithField("module", moduleName).Info("no saved state, starting empty")
		s.setState(inventory.NewState(defaults))
	case err != nil:
		config.LogError(s.logger, moduleName, "Open", "load", nil, err)
		return nil, err
	default:
		st, err := inventory.StateFromDocument(doc)
		if err != nil {
			config.LogError(s.logger, moduleName, "Open", "restore", nil, err)
			return nil, &inventory.PersistenceError{Op: "load", Err: err}
		}
		s.setState(st)
	}
	return s, nil
}

func (s *Session) setState(st *inventory.State) {
	st.Inventory.SetClock(s.now)
	st.Inventory.AddHook(s.lowStockHook)
	s.state = st
}

// lowStockHook warns when an outgoing movement leaves an item under its
// configured threshold.
func (s *Session) lowStockHook(m inventory.Movement, _ *inventory.Inventory) {
	if m.Type != inventory.MovementOut {
		return
	}
	threshold := s.state.Settings.LowStockThreshold
	if m.Resource == inventory.ResourcePackaging {
		threshold = float64(s.state.Settings.PackagingLowStock)
	}
	if m.Balance < threshold {
		s.logger.WithFields(logrus.Fields{
			"module":    moduleName,
			"resource":  m.Resource,
			"key":       m.Key,
			"balance":   m.Balance,
			"threshold": threshold,
		}).Warn("low stock")
	}
}

// save persists the whole state. The in-memory state is kept either way.
func (s *Session) save(ctx context.Context, funcName string) error {
	if err := s.store.Save(ctx, s.state.Document()); err != nil {
		config.LogError(s.logger, moduleName, funcName, "save", nil, err)
		var pe *inventory.PersistenceError
		if errors.As(err, &pe) {
			return pe
		}
		return &inventory.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *Session) logInfo(funcName, msg string, fields logrus.Fields) {
	entry := s.logger.WithFields(logrus.Fields{"module": moduleName, "funcName": funcName})
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Info(msg)
}

// Document is a copy of the current state in its persisted form.
func (s *Session) Document() *inventory.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Document()
}

func (s *Session) Settings() inventory.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

func (s *Session) UpdateSettings(ctx context.Context, settings inventory.Settings) (inventory.Settings, error) {
	if err := settings.Validate(); err != nil {
		return inventory.Settings{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings = settings
	s.logInfo("UpdateSettings", "settings updated", nil)
	return settings, s.save(ctx, "UpdateSettings")
}

func (s *Session) Catalog() *inventory.FormulaCatalog {
	return s.catalog
}
