// Package plan models the ordered contract between the plan generator and
// the plan executor: which tools to run, with which parameters, in which
// order.
package plan

import (
	"bytes"
	"encoding/json"
)

// Step is one (tool, parameters) pair. Params values are scalars.
type Step struct {
	Tool   string
	Params map[string]any
}

// Plan is an ordered sequence of steps. Order is execution order; the same
// tool may appear more than once.
type Plan struct {
	Steps []Step
}

func (p Plan) Empty() bool { return len(p.Steps) == 0 }

func (p Plan) Len() int { return len(p.Steps) }

// Append returns a plan with one more step; used by the debug path to build
// plans without going through the generator.
func (p Plan) Append(tool string, params map[string]any) Plan {
	p.Steps = append(p.Steps, Step{Tool: tool, Params: params})
	return p
}

// MarshalJSON renders the wire format: a JSON object whose keys are tool
// names in step order. Repeated tools appear as repeated keys.
func (p Plan) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, step := range p.Steps {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(step.Tool)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		params := step.Params
		if params == nil {
			params = map[string]any{}
		}
		value, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the plan for logs and traces.
func (p Plan) String() string {
	raw, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
