// Command add_tool_config adds or updates one entry in a tool metadata
// file. The registry's built-in descriptors stay authoritative for
// parameter sets; this file only improves how tools read in the prompt.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sonoralabs/sonora/pkg/tools"
)

func main() {
	path := flag.String("path", "examples/chat/tools_config.json", "metadata file to edit")
	name := flag.String("name", "", "tool name")
	description := flag.String("description", "", "prompt-facing description")
	paramsJSON := flag.String("parameters", "{}", "parameter docs as a JSON object of name to description")
	useCases := flag.String("use_cases", "", "comma separated use case phrases")
	examples := flag.String("examples", "", "comma separated example plans")
	remove := flag.Bool("remove", false, "remove the entry instead of adding it")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: add_tool_config -name=gain -description='...' [-parameters='{...}']")
		os.Exit(1)
	}
	key := tools.Normalize(*name)

	entries, err := loadFile(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *remove {
		if _, ok := entries[key]; !ok {
			fmt.Fprintf(os.Stderr, "no entry for %s\n", key)
			os.Exit(1)
		}
		delete(entries, key)
	} else {
		var params map[string]string
		if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
			fmt.Fprintln(os.Stderr, "parameters:", err)
			os.Exit(1)
		}
		entries[key] = tools.Metadata{
			Name:        key,
			Description: *description,
			Parameters:  params,
			UseCases:    splitList(*useCases),
			Examples:    splitList(*examples),
		}
	}

	if err := saveFile(*path, entries); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *remove {
		fmt.Printf("removed %s from %s\n", key, *path)
		return
	}
	fmt.Printf("wrote %s to %s\n", key, *path)
}

func loadFile(path string) (map[string]tools.Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]tools.Metadata{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var entries map[string]tools.Metadata
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

func saveFile(path string, entries map[string]tools.Metadata) error {
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
