// Package persona holds the fixed set of team roles the chat assistant can
// speak as. The registry is immutable and safe to share across sessions.
package persona

import (
	"fmt"

	"github.com/zulandar/teamdesk/internal/apperr"
)

// Persona is a named role with the system instruction that conditions the
// model's replies.
type Persona struct {
	Name        string `json:"name"`
	Instruction string `json:"instruction"`
}

// Registry is an ordered, read-only lookup of personas.
type Registry struct {
	order  []string
	byName map[string]Persona
}

// New builds a registry from personas in display order. Duplicate or empty
// names are rejected.
func New(personas []Persona) (*Registry, error) {
	r := &Registry{
		order:  make([]string, 0, len(personas)),
		byName: make(map[string]Persona, len(personas)),
	}
	for i, p := range personas {
		if p.Name == "" {
			return nil, fmt.Errorf("persona: entry %d has no name", i)
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("persona: duplicate name %q", p.Name)
		}
		r.order = append(r.order, p.Name)
		r.byName[p.Name] = p
	}
	return r, nil
}

// Default returns the built-in registry of real-estate team personas.
func Default() *Registry {
	r, err := New(builtin)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the persona with the given name.
func (r *Registry) Get(name string) (Persona, error) {
	p, ok := r.byName[name]
	if !ok {
		return Persona{}, fmt.Errorf("persona: %w: %q", apperr.ErrNotFound, name)
	}
	return p, nil
}

// Instruction returns the system instruction for name.
func (r *Registry) Instruction(name string) (string, error) {
	p, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return p.Instruction, nil
}

// Has reports whether name is a registered persona.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Names returns persona names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// List returns every persona in declaration order.
func (r *Registry) List() []Persona {
	out := make([]Persona, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name]
	}
	return out
}

// Len returns the number of personas.
func (r *Registry) Len() int { return len(r.order) }

// First returns the first persona name, the default active persona.
func (r *Registry) First() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}
