package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"telegram-event-scheduler/internal/domain"
)

// Handler completes a command once every field is available.
type Handler func(ctx context.Context, inv Invocation, values FieldValues) error

// Definition couples a command's parser with the step descriptors that fill
// whatever the parser could not take from the typed arguments. Definitions
// are immutable once registered.
type Definition struct {
	Description string
	Parse       ParseFunc
	Steps       []StepSpec
}

// StepFor returns the descriptor for a field the parser reported missing.
func (d Definition) StepFor(field string) (StepSpec, bool) {
	for _, s := range d.Steps {
		if s.Field == field {
			return s, true
		}
	}
	return StepSpec{}, false
}

// Registered is one catalog entry.
type Registered struct {
	Key    string
	Def    Definition
	Handle Handler
}

// Registry maps command keys (without the slash) to definitions. All
// registration happens during startup wiring; lookups afterwards are
// read-only.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]*Registered
}

func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Registered)}
}

// Register adds a command. A duplicate key fails and leaves the original
// registration untouched.
func (r *Registry) Register(key string, def Definition, h Handler) error {
	if key == "" {
		return fmt.Errorf("register command: empty key: %w", domain.ErrInvalidArgument)
	}
	if def.Parse == nil {
		return fmt.Errorf("register command %q: nil parser: %w", key, domain.ErrInvalidArgument)
	}
	if h == nil {
		return fmt.Errorf("register command %q: nil handler: %w", key, domain.ErrInvalidArgument)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.cmds[key]; exists {
		return fmt.Errorf("register command %q: %w", key, domain.ErrDuplicateCommand)
	}
	r.cmds[key] = &Registered{Key: key, Def: def, Handle: h}
	return nil
}

// MustRegister is Register for startup wiring, where a broken catalog should
// stop the process.
func (r *Registry) MustRegister(key string, def Definition, h Handler) {
	if err := r.Register(key, def, h); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(key string) (*Registered, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.cmds[key]
	return reg, ok
}

// Keys returns all registered command keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.cmds))
	for k := range r.cmds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsDuplicate reports whether err came from a duplicate registration.
func IsDuplicate(err error) bool { return errors.Is(err, domain.ErrDuplicateCommand) }
