// Package session owns the per-browser-session state of teamdesk. Each
// session has its own in-memory database holding tasks, side logs and the
// persona conversations; nothing is shared between sessions except the
// read-only persona registry.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/teamdesk/internal/activity"
	"github.com/zulandar/teamdesk/internal/chat"
	"github.com/zulandar/teamdesk/internal/db"
	"github.com/zulandar/teamdesk/internal/llm"
	"github.com/zulandar/teamdesk/internal/persona"
	"github.com/zulandar/teamdesk/internal/task"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Settings are the chat preferences of a session. The API key lives only in
// memory and is never written to the session database or logs.
type Settings struct {
	APIKey string
	Params llm.Params
}

// Session is one user's isolated workspace.
type Session struct {
	ID       string
	Tasks    *task.Store
	Activity *activity.Log
	Chat     *chat.Orchestrator

	mu       sync.Mutex
	db       *gorm.DB
	settings Settings
	persona  string
	lastSeen time.Time
}

// Lock serializes work on the session; every mutation runs under it.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Settings returns the current chat settings. Callers must hold the lock.
func (s *Session) Settings() Settings { return s.settings }

// ActivePersona returns the persona the chat page shows. Callers must hold
// the lock.
func (s *Session) ActivePersona() string { return s.persona }

// SetActivePersona switches the chat page persona. Callers must hold the lock.
func (s *Session) SetActivePersona(name string) { s.persona = name }

// Manager creates, finds and expires sessions.
type Manager struct {
	registry      *persona.Registry
	logger        *zap.Logger
	defaults      Settings
	clientFactory llm.Factory
	idleTimeout   time.Duration
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// Opts holds parameters for creating a Manager.
type Opts struct {
	Registry      *persona.Registry
	Logger        *zap.Logger
	Defaults      Settings      // APIKey here is the process-wide fallback key
	ClientFactory llm.Factory   // builds a model client from an API key
	IdleTimeout   time.Duration // zero keeps sessions until Close
	Now           func() time.Time
}

// NewManager creates a Manager.
func NewManager(opts Opts) (*Manager, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("session: persona registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Defaults.Params == (llm.Params{}) {
		opts.Defaults.Params = llm.DefaultParams()
	}
	return &Manager{
		registry:      opts.Registry,
		logger:        opts.Logger,
		defaults:      opts.Defaults,
		clientFactory: opts.ClientFactory,
		idleTimeout:   opts.IdleTimeout,
		now:           opts.Now,
		sessions:      make(map[string]*Session),
	}, nil
}

// Create opens a new session with the demo tasks loaded and a fresh
// conversation for every persona.
func (m *Manager) Create() (*Session, error) {
	id := uuid.NewString()
	gdb, err := db.OpenSession("teamdesk-" + id)
	if err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}

	s, err := m.build(id, gdb)
	if err != nil {
		db.Close(gdb)
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session", id), zap.Int("active", count))
	return s, nil
}

func (m *Manager) build(id string, gdb *gorm.DB) (*Session, error) {
	log := m.logger.With(zap.String("session", id))

	tasks, err := task.NewStore(gdb, task.Opts{Now: m.now, Logger: log})
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if err := tasks.ResetToDemo(); err != nil {
		return nil, fmt.Errorf("session: seed demo tasks: %w", err)
	}

	act, err := activity.New(gdb, activity.Opts{Now: m.now, Logger: log})
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	orch, err := chat.New(chat.Opts{DB: gdb, Registry: m.registry, Logger: log, Now: m.now})
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if err := orch.Seed(); err != nil {
		return nil, fmt.Errorf("session: seed conversations: %w", err)
	}

	s := &Session{
		ID:       id,
		Tasks:    tasks,
		Activity: act,
		Chat:     orch,
		db:       gdb,
		persona:  m.registry.First(),
		lastSeen: m.now(),
	}
	if err := m.applySettings(s, Settings{APIKey: m.defaults.APIKey, Params: m.defaults.Params}); err != nil {
		// A bad fallback key only disables chat; the session is still usable.
		log.Warn("default model client unavailable", zap.Error(err))
	}
	return s, nil
}

// Get returns the session with id and marks it as recently used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	s.lastSeen = m.now()
	s.mu.Unlock()
	return s, true
}

// UpdateSettings validates and stores new chat settings for s, rebuilding
// its model client. An empty API key falls back to the process-wide key.
// Callers must hold the session lock.
func (m *Manager) UpdateSettings(s *Session, settings Settings) error {
	if err := settings.Params.Validate(); err != nil {
		return err
	}
	if settings.APIKey == "" {
		settings.APIKey = m.defaults.APIKey
	}
	return m.applySettings(s, settings)
}

func (m *Manager) applySettings(s *Session, settings Settings) error {
	s.settings = settings
	if settings.APIKey == "" || m.clientFactory == nil {
		s.Chat.SetClient(nil)
		return nil
	}
	client, err := m.clientFactory(settings.APIKey)
	if err != nil {
		s.Chat.SetClient(nil)
		return fmt.Errorf("session: model client: %w", err)
	}
	s.Chat.SetClient(client)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Sweep() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTimeout)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if !s.mu.TryLock() {
			// In use right now, so not idle.
			continue
		}
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
		s.mu.Unlock()
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.closeSession(s)
	}
	if len(expired) > 0 {
		m.logger.Info("idle sessions swept", zap.Int("removed", len(expired)), zap.Int("active", m.Len()))
	}
	return len(expired)
}

// Close closes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		m.closeSession(s)
	}
}

func (m *Manager) closeSession(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := db.Close(s.db); err != nil {
		m.logger.Warn("close session database", zap.String("session", s.ID), zap.Error(err))
	}
	m.logger.Debug("session closed", zap.String("session", s.ID))
}
