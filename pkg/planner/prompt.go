package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sonoralabs/sonora/pkg/tools"
)

// renderSystemPrompt builds the tool catalog the model plans against.
// Tools appear in registration order; external metadata overlays the
// registered descriptions when present.
func renderSystemPrompt(reg *tools.Registry, meta map[string]tools.Metadata) string {
	var b strings.Builder
	b.WriteString("You are an audio processing planner. ")
	b.WriteString("Given a user request, respond with a single JSON object mapping tool names to their parameters, in the order the tools should run.\n\n")
	b.WriteString("Available tools:\n\n")

	for _, registered := range reg.List() {
		desc := tools.MergeMetadata(registered, meta)
		fmt.Fprintf(&b, "- %s: %s\n", desc.Name, desc.Description)

		if len(desc.Parameters) > 0 {
			names := make([]string, 0, len(desc.Parameters))
			for name := range desc.Parameters {
				names = append(names, name)
			}
			sort.Strings(names)
			b.WriteString("  parameters:\n")
			for _, name := range names {
				spec := desc.Parameters[name]
				fmt.Fprintf(&b, "    %s (%s", name, spec.Type)
				if spec.Default != nil {
					fmt.Fprintf(&b, ", default %v", spec.Default)
				}
				fmt.Fprintf(&b, "): %s\n", spec.Description)
			}
		}
		for _, uc := range desc.UseCases {
			fmt.Fprintf(&b, "  use case: %s\n", uc)
		}
		for _, ex := range desc.Examples {
			fmt.Fprintf(&b, "  example: %s\n", ex)
		}
		b.WriteString("\n")
	}

	b.WriteString(promptRules)
	return b.String()
}

const promptRules = `Rules:
- Answer with exactly one JSON object and nothing else.
- Keys are tool names, values are objects with that tool's parameters.
- Order the keys in the order the tools should be applied.
- Use an empty object {} for a tool that needs no parameters.
- If no tool fits the request, answer with {}.

Examples:
User: make it louder and flip the phase
{"gain": {"gain_db": 6}, "invert": {}}

User: raise the pitch two semitones
{"voice_conversion": {"semitones": 2}}

User: what's the weather like
{}
`
