package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/llm"
	"github.com/zulandar/teamdesk/internal/persona"
	"github.com/zulandar/teamdesk/internal/task"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func echoFactory(keys *[]string) llm.Factory {
	return func(apiKey string) (llm.Completer, error) {
		if keys != nil {
			*keys = append(*keys, apiKey)
		}
		return llm.CompleterFunc(func(ctx context.Context, req llm.Request) (string, error) {
			return "ok", nil
		}), nil
	}
}

func newManager(t *testing.T, opts Opts) (*Manager, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
	if opts.Registry == nil {
		opts.Registry = persona.Default()
	}
	opts.Now = clk.Now
	m, err := NewManager(opts)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m, clk
}

func TestNewManager_RequiresRegistry(t *testing.T) {
	_, err := NewManager(Opts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry")
}

func TestCreate_SeedsDemoAndConversations(t *testing.T) {
	m, _ := newManager(t, Opts{})

	s, err := m.Create()
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Len())

	n, err := s.Tasks.Count()
	require.NoError(t, err)
	assert.Equal(t, len(task.DemoTitles()), n)

	reg := persona.Default()
	for _, name := range reg.Names() {
		l, err := s.Chat.Len(name)
		require.NoError(t, err)
		assert.Equal(t, 1, l, "persona %q", name)
	}

	assert.Equal(t, reg.First(), s.ActivePersona())
	assert.Equal(t, llm.DefaultParams(), s.Settings().Params)
	assert.False(t, s.Chat.HasClient())
}

func TestCreate_SessionsAreIsolated(t *testing.T) {
	m, _ := newManager(t, Opts{})

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	_, err = a.Tasks.Create(task.CreateOpts{Title: "only in a"})
	require.NoError(t, err)

	na, err := a.Tasks.Count()
	require.NoError(t, err)
	nb, err := b.Tasks.Count()
	require.NoError(t, err)
	assert.Equal(t, nb+1, na)
}

func TestCreate_UsesFallbackKey(t *testing.T) {
	var keys []string
	m, _ := newManager(t, Opts{
		Defaults:      Settings{APIKey: "sk-env"},
		ClientFactory: echoFactory(&keys),
	})

	s, err := m.Create()
	require.NoError(t, err)
	assert.True(t, s.Chat.HasClient())
	assert.Equal(t, []string{"sk-env"}, keys)
}

func TestCreate_FactoryErrorLeavesChatDisabled(t *testing.T) {
	m, _ := newManager(t, Opts{
		Defaults: Settings{APIKey: "sk-bad"},
		ClientFactory: func(string) (llm.Completer, error) {
			return nil, errors.New("nope")
		},
	})

	s, err := m.Create()
	require.NoError(t, err)
	assert.False(t, s.Chat.HasClient())
}

// ---------------------------------------------------------------------------
// Get / settings
// ---------------------------------------------------------------------------

func TestGet(t *testing.T) {
	m, _ := newManager(t, Opts{})
	s, err := m.Create()
	require.NoError(t, err)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestUpdateSettings(t *testing.T) {
	var keys []string
	m, _ := newManager(t, Opts{
		Defaults:      Settings{APIKey: "sk-env"},
		ClientFactory: echoFactory(&keys),
	})
	s, err := m.Create()
	require.NoError(t, err)

	s.Lock()
	defer s.Unlock()

	params := llm.Params{Model: "gpt-4o-mini", MaxTokens: 800, Temperature: 0.2}
	require.NoError(t, m.UpdateSettings(s, Settings{APIKey: "sk-user", Params: params}))
	assert.Equal(t, params, s.Settings().Params)
	assert.Equal(t, "sk-user", s.Settings().APIKey)
	assert.True(t, s.Chat.HasClient())

	// Empty key falls back to the process key.
	require.NoError(t, m.UpdateSettings(s, Settings{Params: params}))
	assert.Equal(t, "sk-env", s.Settings().APIKey)
	assert.Equal(t, []string{"sk-env", "sk-user", "sk-env"}, keys)
}

func TestUpdateSettings_InvalidParams(t *testing.T) {
	m, _ := newManager(t, Opts{})
	s, err := m.Create()
	require.NoError(t, err)

	s.Lock()
	defer s.Unlock()

	err = m.UpdateSettings(s, Settings{Params: llm.Params{Model: "gpt-2", MaxTokens: 10, Temperature: 3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, llm.DefaultParams(), s.Settings().Params)
}

func TestUpdateSettings_NoKeyDisablesChat(t *testing.T) {
	m, _ := newManager(t, Opts{ClientFactory: echoFactory(nil)})
	s, err := m.Create()
	require.NoError(t, err)

	s.Lock()
	defer s.Unlock()

	require.NoError(t, m.UpdateSettings(s, Settings{APIKey: "sk-1", Params: llm.DefaultParams()}))
	require.True(t, s.Chat.HasClient())

	require.NoError(t, m.UpdateSettings(s, Settings{Params: llm.DefaultParams()}))
	assert.False(t, s.Chat.HasClient())
}

// ---------------------------------------------------------------------------
// Sweep / Close
// ---------------------------------------------------------------------------

func TestSweep_RemovesIdleSessions(t *testing.T) {
	m, clk := newManager(t, Opts{IdleTimeout: time.Hour})

	old, err := m.Create()
	require.NoError(t, err)
	clk.Advance(50 * time.Minute)
	fresh, err := m.Create()
	require.NoError(t, err)

	clk.Advance(20 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())

	_, ok := m.Get(old.ID)
	assert.False(t, ok)
	_, ok = m.Get(fresh.ID)
	assert.True(t, ok)
}

func TestSweep_GetKeepsSessionAlive(t *testing.T) {
	m, clk := newManager(t, Opts{IdleTimeout: time.Hour})
	s, err := m.Create()
	require.NoError(t, err)

	clk.Advance(45 * time.Minute)
	_, ok := m.Get(s.ID)
	require.True(t, ok)
	clk.Advance(45 * time.Minute)

	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestSweep_SkipsLockedSession(t *testing.T) {
	m, clk := newManager(t, Opts{IdleTimeout: time.Minute})
	s, err := m.Create()
	require.NoError(t, err)

	clk.Advance(time.Hour)
	s.Lock()
	assert.Equal(t, 0, m.Sweep())
	s.Unlock()
	assert.Equal(t, 1, m.Sweep())
}

func TestSweep_ZeroTimeoutKeepsEverything(t *testing.T) {
	m, clk := newManager(t, Opts{})
	_, err := m.Create()
	require.NoError(t, err)

	clk.Advance(1000 * time.Hour)
	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestClose(t *testing.T) {
	m, _ := newManager(t, Opts{})
	for i := 0; i < 3; i++ {
		_, err := m.Create()
		require.NoError(t, err)
	}
	m.Close()
	assert.Equal(t, 0, m.Len())
}

func TestStartSweeper_BadSchedule(t *testing.T) {
	m, _ := newManager(t, Opts{IdleTimeout: time.Hour})
	err := m.StartSweeper(context.Background(), "not a schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep schedule")
}

func TestStartSweeper_StopsOnCancel(t *testing.T) {
	m, _ := newManager(t, Opts{IdleTimeout: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.StartSweeper(ctx, "*/15 * * * *"))
	cancel()
}
