package tools

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sonoralabs/sonora/pkg/errorsx"
)

// Metadata is one entry of the external tool configuration file: a JSON
// mapping from tool name to prompt-facing documentation. It never affects
// execution, only how a tool is described to the model.
type Metadata struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
	UseCases    []string          `json:"use_cases"`
	Examples    []string          `json:"examples"`
}

// LoadMetadata reads a tool configuration file. A missing path returns an
// empty map; a malformed file is an error.
func LoadMetadata(path string) (map[string]Metadata, error) {
	if path == "" {
		return map[string]Metadata{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Metadata{}, nil
		}
		return nil, errorsx.Wrap(fmt.Errorf("read tool metadata: %w", err), errorsx.ReasonConfigLoad)
	}
	var entries map[string]Metadata
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errorsx.Wrap(fmt.Errorf("parse tool metadata: %w", err), errorsx.ReasonConfigLoad)
	}
	out := make(map[string]Metadata, len(entries))
	for name, entry := range entries {
		out[Normalize(name)] = entry
	}
	return out, nil
}

// MergeMetadata overlays file metadata on a registered descriptor. The
// descriptor's parameter set and defaults are authoritative; the file only
// replaces descriptions, use cases, and examples when it provides them.
func MergeMetadata(desc Descriptor, meta map[string]Metadata) Descriptor {
	entry, ok := meta[Normalize(desc.Name)]
	if !ok {
		return desc
	}
	if entry.Description != "" {
		desc.Description = entry.Description
	}
	if len(entry.UseCases) > 0 {
		desc.UseCases = entry.UseCases
	}
	if len(entry.Examples) > 0 {
		desc.Examples = entry.Examples
	}
	if len(entry.Parameters) > 0 {
		params := make(map[string]ParamSpec, len(desc.Parameters))
		for name, spec := range desc.Parameters {
			if doc, ok := entry.Parameters[name]; ok && doc != "" {
				spec.Description = doc
			}
			params[name] = spec
		}
		desc.Parameters = params
	}
	return desc
}
