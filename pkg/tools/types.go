package tools

import (
	"context"

	"github.com/sonoralabs/sonora/pkg/audio"
)

// ParamType is the declared scalar type of a tool parameter.
type ParamType string

const (
	TypeNumber ParamType = "number"
	TypeString ParamType = "string"
	TypeBool   ParamType = "bool"
)

// ParamSpec documents one parameter of a tool: what it does, what scalar
// type it accepts, and the value used when a plan omits it.
type ParamSpec struct {
	Description string
	Type        ParamType
	Default     any
}

// Descriptor is the static metadata for one transform. Name is the primary
// key of the registry; UseCases and Examples only enrich the model prompt.
type Descriptor struct {
	Name        string
	Description string
	Parameters  map[string]ParamSpec
	UseCases    []string
	Examples    []string
}

// Params is a validated parameter mapping passed to a capability.
type Params map[string]any

// Float returns the named parameter as a float64.
func (p Params) Float(name string, fallback float64) float64 {
	v, ok := p[name]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return fallback
	}
}

// String returns the named parameter as a string.
func (p Params) String(name, fallback string) string {
	if s, ok := p[name].(string); ok {
		return s
	}
	return fallback
}

// Bool returns the named parameter as a bool.
func (p Params) Bool(name string, fallback bool) bool {
	if b, ok := p[name].(bool); ok {
		return b
	}
	return fallback
}

// Capability transforms an audio buffer. It must be stateless between
// invocations and must return a self-consistent (samples, rate) pair even
// when it changes the buffer length.
type Capability func(ctx context.Context, in audio.Buffer, params Params) (audio.Buffer, error)

// Entry pairs a descriptor with its capability.
type Entry struct {
	Descriptor Descriptor
	Capability Capability
}
