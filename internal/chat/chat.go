// Package chat keeps one conversation per persona and runs chat turns
// against the external model.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/teamdesk/internal/apperr"
	"github.com/zulandar/teamdesk/internal/llm"
	"github.com/zulandar/teamdesk/internal/models"
	"github.com/zulandar/teamdesk/internal/persona"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TimestampLayout is the display format for message timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Orchestrator owns the per-persona message logs of one session.
type Orchestrator struct {
	db       *gorm.DB
	registry *persona.Registry
	client   llm.Completer
	logger   *zap.Logger
	now      func() time.Time
}

// Opts holds parameters for creating an Orchestrator.
type Opts struct {
	DB       *gorm.DB
	Registry *persona.Registry
	Client   llm.Completer // optional; nil disables SendToModel
	Logger   *zap.Logger
	Now      func() time.Time
}

// VisibleMessage is a user or assistant turn as shown and exported.
type VisibleMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"ts"`
}

// New creates an Orchestrator. Call Seed before use on a fresh database.
func New(opts Opts) (*Orchestrator, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("chat: db is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("chat: persona registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		db:       opts.DB,
		registry: opts.Registry,
		client:   opts.Client,
		logger:   opts.Logger,
		now:      opts.Now,
	}, nil
}

// SetClient replaces the model client. A nil client disables sending.
func (o *Orchestrator) SetClient(c llm.Completer) { o.client = c }

// HasClient reports whether a model client is configured.
func (o *Orchestrator) HasClient() bool { return o.client != nil }

// Seed writes the system message for every persona that does not have a
// conversation yet.
func (o *Orchestrator) Seed() error {
	var existing []string
	if err := o.db.Model(&models.ChatMessage{}).
		Where("seq = ?", 0).Pluck("persona", &existing).Error; err != nil {
		return fmt.Errorf("chat: seed: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p] = true
	}

	var rows []models.ChatMessage
	for _, p := range o.registry.List() {
		if have[p.Name] {
			continue
		}
		rows = append(rows, models.ChatMessage{
			Persona: p.Name,
			Seq:     0,
			Role:    models.RoleSystem,
			Content: p.Instruction,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := o.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("chat: seed: %w", err)
	}
	return nil
}

// Conversation returns the full ordered log for a persona, system message
// first.
func (o *Orchestrator) Conversation(name string) ([]models.ChatMessage, error) {
	if !o.registry.Has(name) {
		return nil, fmt.Errorf("chat: %w: persona %q", apperr.ErrNotFound, name)
	}
	var msgs []models.ChatMessage
	if err := o.db.Where("persona = ?", name).Order("seq ASC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("chat: load %q: %w", name, err)
	}
	return msgs, nil
}

// Len returns the number of messages in a persona's conversation.
func (o *Orchestrator) Len(name string) (int, error) {
	if !o.registry.Has(name) {
		return 0, fmt.Errorf("chat: %w: persona %q", apperr.ErrNotFound, name)
	}
	var count int64
	if err := o.db.Model(&models.ChatMessage{}).Where("persona = ?", name).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("chat: count %q: %w", name, err)
	}
	return int(count), nil
}

// AppendUser records a user message. Blank text is rejected and nothing is
// written.
func (o *Orchestrator) AppendUser(name, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("chat: %w: message text is empty", apperr.ErrValidation)
	}
	return o.appendMessage(name, models.RoleUser, text)
}

// SendToModel submits the persona's whole conversation to the model and
// appends the reply. On any failure the conversation is left untouched.
func (o *Orchestrator) SendToModel(ctx context.Context, name string, params llm.Params) (*models.ChatMessage, error) {
	if o.client == nil {
		return nil, fmt.Errorf("chat: %w: no model client configured (set an API key)", apperr.ErrPrecondition)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	history, err := o.Conversation(name)
	if err != nil {
		return nil, err
	}
	msgs := make([]llm.Message, len(history))
	for i, m := range history {
		msgs[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	start := o.now()
	reply, err := o.client.Complete(ctx, llm.Request{
		Model:       params.Model,
		Messages:    msgs,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
	if err != nil {
		o.logger.Warn("model call failed",
			zap.String("persona", name),
			zap.String("model", params.Model),
			zap.Error(err))
		return nil, fmt.Errorf("chat: %w: %v", apperr.ErrExternalService, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("chat: %w: model returned an empty reply", apperr.ErrExternalService)
	}

	msg, err := o.appendMessage(name, models.RoleAssistant, reply)
	if err != nil {
		return nil, err
	}
	o.logger.Info("model reply appended",
		zap.String("persona", name),
		zap.String("model", params.Model),
		zap.Int("messages_sent", len(msgs)),
		zap.Duration("elapsed", o.now().Sub(start)))
	return msg, nil
}

// Send runs a full chat turn: check the client, record the user text, then
// ask the model. When the model call fails the user message stays in the log.
func (o *Orchestrator) Send(ctx context.Context, name, text string, params llm.Params) (*models.ChatMessage, error) {
	if o.client == nil {
		return nil, fmt.Errorf("chat: %w: no model client configured (set an API key)", apperr.ErrPrecondition)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if _, err := o.AppendUser(name, text); err != nil {
		return nil, err
	}
	return o.SendToModel(ctx, name, params)
}

// Reset truncates a persona's conversation back to its system message.
func (o *Orchestrator) Reset(name string) error {
	if !o.registry.Has(name) {
		return fmt.Errorf("chat: %w: persona %q", apperr.ErrNotFound, name)
	}
	if err := o.db.Where("persona = ? AND seq > ?", name, 0).Delete(&models.ChatMessage{}).Error; err != nil {
		return fmt.Errorf("chat: reset %q: %w", name, err)
	}
	return nil
}

// ExportVisible returns the user and assistant turns of a conversation.
func (o *Orchestrator) ExportVisible(name string) ([]VisibleMessage, error) {
	msgs, err := o.Conversation(name)
	if err != nil {
		return nil, err
	}
	out := make([]VisibleMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == models.RoleSystem {
			continue
		}
		out = append(out, VisibleMessage{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp})
	}
	return out, nil
}

var filenameReplacer = strings.NewReplacer(" ", "_", "/", "-")

// ExportFilename returns the download name for a persona's CSV export.
func ExportFilename(name string, now time.Time) string {
	return fmt.Sprintf("chat_%s_%s.csv", filenameReplacer.Replace(name), now.Format("20060102_150405"))
}

func (o *Orchestrator) appendMessage(name, role, content string) (*models.ChatMessage, error) {
	n, err := o.Len(name)
	if err != nil {
		return nil, err
	}
	msg := models.ChatMessage{
		Persona:   name,
		Seq:       n,
		Role:      role,
		Content:   content,
		Timestamp: o.now().Format(TimestampLayout),
	}
	if err := o.db.Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("chat: append %s message: %w", role, err)
	}
	return &msg, nil
}
