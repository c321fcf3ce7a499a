package tools

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sonoralabs/sonora/pkg/errorsx"
)

var (
	// ErrDuplicateTool is returned when a name is registered twice.
	// Registration runs once at startup, so this is a configuration error.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrUnknownTool is returned when Resolve misses.
	ErrUnknownTool = errors.New("unknown tool")
)

// Registry maps tool names to (descriptor, capability) entries. It is
// populated once during startup discovery and treated as read-only for the
// lifetime of the process; List returns descriptors in registration order.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Normalize canonicalizes a tool name the way the registry keys it.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds an entry after validating the descriptor.
func (r *Registry) Register(desc Descriptor, cap Capability) error {
	if err := validateDescriptor(desc); err != nil {
		return errorsx.Wrap(err, errorsx.ReasonToolRegister)
	}
	if cap == nil {
		return errorsx.Wrap(fmt.Errorf("tool %q: nil capability", desc.Name), errorsx.ReasonToolRegister)
	}
	key := Normalize(desc.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; ok {
		return errorsx.Wrap(fmt.Errorf("tool %q: %w", desc.Name, ErrDuplicateTool), errorsx.ReasonToolRegister)
	}
	desc.Name = key
	r.entries[key] = Entry{Descriptor: desc, Capability: cap}
	r.order = append(r.order, key)
	return nil
}

// Resolve looks up a tool by name.
func (r *Registry) Resolve(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[Normalize(name)]
	if !ok {
		return Entry{}, errorsx.Wrap(fmt.Errorf("tool %q: %w", name, ErrUnknownTool), errorsx.ReasonToolResolve)
	}
	return entry, nil
}

// Has reports whether a tool is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[Normalize(name)]
	return ok
}

// List returns all descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.entries[key].Descriptor)
	}
	return out
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func validateDescriptor(desc Descriptor) error {
	if strings.TrimSpace(desc.Name) == "" {
		return errors.New("tool name cannot be empty")
	}
	for name, spec := range desc.Parameters {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("tool %q: empty parameter name", desc.Name)
		}
		switch spec.Type {
		case TypeNumber, TypeString, TypeBool:
		default:
			return fmt.Errorf("tool %q: parameter %q has invalid type %q", desc.Name, name, spec.Type)
		}
	}
	return nil
}
