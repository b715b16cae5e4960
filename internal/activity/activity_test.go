package activity

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/db"
)

var testNow = time.Date(2026, 4, 2, 16, 45, 0, 0, time.UTC)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	gdb, err := db.OpenSession("activity-" + uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) })
	l, err := New(gdb, Opts{Now: func() time.Time { return testNow }})
	require.NoError(t, err)
	return l
}

func TestNew_NilDB(t *testing.T) {
	_, err := New(nil, Opts{})
	assert.Error(t, err)
}

func TestLogCall(t *testing.T) {
	l := newTestLog(t)
	c, err := l.LogCall(CallOpts{LeadName: "Maria Lopez", Phone: "555-0101", Agent: "Dana", Outcome: "Left voicemail"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.True(t, c.CalledAt.Equal(testNow))

	_, err = l.LogCall(CallOpts{LeadName: "Bo", Outcome: "Hung up"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = l.LogCall(CallOpts{Outcome: "No answer"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCalls_InsertionOrder(t *testing.T) {
	l := newTestLog(t)
	for _, name := range []string{"Zed", "Amy", "Kim"} {
		_, err := l.LogCall(CallOpts{LeadName: name, Outcome: "No answer"})
		require.NoError(t, err)
	}
	calls, err := l.Calls()
	require.NoError(t, err)
	require.Len(t, calls, 3)
	assert.Equal(t, "Zed", calls[0].LeadName)
	assert.Equal(t, "Kim", calls[2].LeadName)
}

func TestLogBPO(t *testing.T) {
	l := newTestLog(t)
	b, err := l.LogBPO(BPOOpts{PropertyAddress: "12 Elm St", EstimatedValue: 415000, CompsSummary: "3 comps within 0.5mi"})
	require.NoError(t, err)
	assert.Equal(t, 415000.0, b.EstimatedValue)
	assert.Equal(t, "2026-04-02", b.Date.Format("2006-01-02"))

	for _, v := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = l.LogBPO(BPOOpts{PropertyAddress: "12 Elm St", EstimatedValue: v})
		assert.True(t, errors.Is(err, apperr.ErrValidation), "value %v", v)
	}

	bpos, err := l.BPOs()
	require.NoError(t, err)
	assert.Len(t, bpos, 1)
}

func TestLogVOP(t *testing.T) {
	l := newTestLog(t)
	v, err := l.LogVOP(VOPOpts{EmailSubject: "Please confirm occupancy", Recipient: "owner@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Sent", v.Status)

	_, err = l.LogVOP(VOPOpts{Recipient: "x@example.com", Status: "Bounced"})
	require.NoError(t, err)
	_, err = l.LogVOP(VOPOpts{Recipient: "y@example.com", Status: "Bounced"})
	require.NoError(t, err)

	_, err = l.LogVOP(VOPOpts{Recipient: "z@example.com", Status: "Lost"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	counts, err := l.VOPStatusCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Sent": 1, "Bounced": 2}, counts)

	vops, _ := l.VOPs()
	assert.Len(t, vops, 3)
}
