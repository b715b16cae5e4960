// Package llm is the boundary to the external chat-completion model.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/zulandar/teamdesk/internal/apperr"
)

// Models lists the model identifiers offered to users.
var Models = []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo", "gpt-3.5-turbo"}

// Generation bounds and defaults.
const (
	DefaultModel       = "gpt-4o"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.6

	MinMaxTokens   = 150
	MaxMaxTokens   = 2000
	MinTemperature = 0.0
	MaxTemperature = 1.2
)

// Message is one role-tagged entry sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a full completion request.
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Completer produces the assistant's reply for an ordered message list.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Params are the caller-chosen generation settings.
type Params struct {
	Model       string  `json:"model" yaml:"model"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// DefaultParams returns the settings used when the user has chosen nothing.
func DefaultParams() Params {
	return Params{Model: DefaultModel, MaxTokens: DefaultMaxTokens, Temperature: DefaultTemperature}
}

// Validate checks that p is inside the offered ranges.
func (p Params) Validate() error {
	var errs []string
	if !ValidModel(p.Model) {
		errs = append(errs, fmt.Sprintf("model %q is not one of %s", p.Model, strings.Join(Models, ", ")))
	}
	if p.MaxTokens < MinMaxTokens || p.MaxTokens > MaxMaxTokens {
		errs = append(errs, fmt.Sprintf("max_tokens %d outside [%d, %d]", p.MaxTokens, MinMaxTokens, MaxMaxTokens))
	}
	if p.Temperature < MinTemperature || p.Temperature > MaxTemperature {
		errs = append(errs, fmt.Sprintf("temperature %.2f outside [%.1f, %.1f]", p.Temperature, MinTemperature, MaxTemperature))
	}
	if len(errs) > 0 {
		return fmt.Errorf("llm: %w: %s", apperr.ErrValidation, strings.Join(errs, "; "))
	}
	return nil
}

// ValidModel reports whether model is one of Models.
func ValidModel(model string) bool {
	for _, m := range Models {
		if m == model {
			return true
		}
	}
	return false
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Factory builds a Completer for an API key.
type Factory func(apiKey string) (Completer, error)
