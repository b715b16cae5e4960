// Package activity holds the append-only side logs of a session: cold
// calls, broker price opinions and verification emails.
package activity

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Log provides the call, BPO and VOP tables of one session.
type Log struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

// Opts holds optional collaborators for a Log.
type Opts struct {
	Now    func() time.Time
	Logger *zap.Logger
}

// CallOpts holds parameters for logging a call.
type CallOpts struct {
	LeadName string
	Phone    string
	Agent    string
	CalledAt time.Time // defaults to now
	Outcome  string
	Notes    string
}

// BPOOpts holds parameters for logging a broker price opinion.
type BPOOpts struct {
	PropertyAddress string
	EstimatedValue  float64
	CompsSummary    string
	Agent           string
	Date            time.Time // defaults to today
	Notes           string
}

// VOPOpts holds parameters for logging a verification email.
type VOPOpts struct {
	EmailSubject string
	Recipient    string
	SentDate     time.Time // defaults to today
	Status       string    // defaults to Sent
	Notes        string
}

// New wraps db as the activity log of a session.
func New(db *gorm.DB, opts Opts) (*Log, error) {
	if db == nil {
		return nil, fmt.Errorf("activity: db is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Log{db: db, now: opts.Now, logger: opts.Logger}, nil
}

// LogCall appends a call record.
func (l *Log) LogCall(opts CallOpts) (*models.Call, error) {
	if strings.TrimSpace(opts.LeadName) == "" {
		return nil, fmt.Errorf("activity: %w: lead name is required", apperr.ErrValidation)
	}
	if !models.ValidCallOutcome(opts.Outcome) {
		return nil, fmt.Errorf("activity: %w: invalid call outcome %q; valid outcomes: %v", apperr.ErrValidation, opts.Outcome, models.CallOutcomes)
	}
	if opts.CalledAt.IsZero() {
		opts.CalledAt = l.now()
	}
	seq, err := l.nextSeq(&models.Call{})
	if err != nil {
		return nil, err
	}
	c := models.Call{
		ID:       uuid.NewString(),
		Seq:      seq,
		LeadName: strings.TrimSpace(opts.LeadName),
		Phone:    opts.Phone,
		Agent:    opts.Agent,
		CalledAt: opts.CalledAt,
		Outcome:  opts.Outcome,
		Notes:    opts.Notes,
	}
	if err := l.db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("activity: log call: %w", err)
	}
	l.logger.Debug("call logged", zap.String("id", c.ID), zap.String("outcome", c.Outcome))
	return &c, nil
}

// LogBPO appends a broker price opinion.
func (l *Log) LogBPO(opts BPOOpts) (*models.BPO, error) {
	if strings.TrimSpace(opts.PropertyAddress) == "" {
		return nil, fmt.Errorf("activity: %w: property address is required", apperr.ErrValidation)
	}
	if v := opts.EstimatedValue; math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, fmt.Errorf("activity: %w: estimated value must be a non-negative number", apperr.ErrValidation)
	}
	if opts.Date.IsZero() {
		opts.Date = l.now()
	}
	seq, err := l.nextSeq(&models.BPO{})
	if err != nil {
		return nil, err
	}
	b := models.BPO{
		ID:              uuid.NewString(),
		Seq:             seq,
		PropertyAddress: strings.TrimSpace(opts.PropertyAddress),
		EstimatedValue:  opts.EstimatedValue,
		CompsSummary:    opts.CompsSummary,
		Agent:           opts.Agent,
		Date:            dateOnly(opts.Date),
		Notes:           opts.Notes,
	}
	if err := l.db.Create(&b).Error; err != nil {
		return nil, fmt.Errorf("activity: log bpo: %w", err)
	}
	l.logger.Debug("bpo logged", zap.String("id", b.ID))
	return &b, nil
}

// LogVOP appends a verification email record.
func (l *Log) LogVOP(opts VOPOpts) (*models.VOP, error) {
	if strings.TrimSpace(opts.Recipient) == "" {
		return nil, fmt.Errorf("activity: %w: recipient is required", apperr.ErrValidation)
	}
	if opts.Status == "" {
		opts.Status = "Sent"
	}
	if !models.ValidVOPStatus(opts.Status) {
		return nil, fmt.Errorf("activity: %w: invalid VOP status %q; valid statuses: %v", apperr.ErrValidation, opts.Status, models.VOPStatuses)
	}
	if opts.SentDate.IsZero() {
		opts.SentDate = l.now()
	}
	seq, err := l.nextSeq(&models.VOP{})
	if err != nil {
		return nil, err
	}
	v := models.VOP{
		ID:           uuid.NewString(),
		Seq:          seq,
		EmailSubject: opts.EmailSubject,
		Recipient:    strings.TrimSpace(opts.Recipient),
		SentDate:     dateOnly(opts.SentDate),
		Status:       opts.Status,
		Notes:        opts.Notes,
	}
	if err := l.db.Create(&v).Error; err != nil {
		return nil, fmt.Errorf("activity: log vop: %w", err)
	}
	l.logger.Debug("vop logged", zap.String("id", v.ID), zap.String("status", v.Status))
	return &v, nil
}

// Calls returns the call log in insertion order.
func (l *Log) Calls() ([]models.Call, error) {
	var out []models.Call
	if err := l.db.Order("seq ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("activity: list calls: %w", err)
	}
	return out, nil
}

// BPOs returns the BPO log in insertion order.
func (l *Log) BPOs() ([]models.BPO, error) {
	var out []models.BPO
	if err := l.db.Order("seq ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("activity: list bpos: %w", err)
	}
	return out, nil
}

// VOPs returns the VOP log in insertion order.
func (l *Log) VOPs() ([]models.VOP, error) {
	var out []models.VOP
	if err := l.db.Order("seq ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("activity: list vops: %w", err)
	}
	return out, nil
}

// VOPStatusCounts returns how many verification emails are in each state.
func (l *Log) VOPStatusCounts() (map[string]int, error) {
	type row struct {
		Status string
		Count  int
	}
	var rows []row
	if err := l.db.Model(&models.VOP{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("activity: vop status counts: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (l *Log) nextSeq(model interface{}) (int64, error) {
	var maxSeq int64
	if err := l.db.Model(model).Select("COALESCE(MAX(seq), 0)").Scan(&maxSeq).Error; err != nil {
		return 0, fmt.Errorf("activity: next sequence: %w", err)
	}
	return maxSeq + 1, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
