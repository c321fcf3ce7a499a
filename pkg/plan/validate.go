package plan

import (
	"github.com/sonoralabs/sonora/pkg/tools"
)

// Validate filters a plan against the registry: steps naming unknown tools
// are dropped, and parameter values that are not scalars are dropped from
// their step. Order is preserved. Validating an already-valid plan returns
// it unchanged, so the operation is idempotent.
func Validate(p Plan, reg *tools.Registry) Plan {
	var out Plan
	for _, step := range p.Steps {
		if !reg.Has(step.Tool) {
			continue
		}
		out.Steps = append(out.Steps, Step{
			Tool:   tools.Normalize(step.Tool),
			Params: scalarParams(step.Params),
		})
	}
	return out
}

func scalarParams(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if isScalar(v) {
			out[k] = v
		}
	}
	return out
}

func isScalar(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, string, bool:
		return true
	default:
		return false
	}
}
