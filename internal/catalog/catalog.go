// File: internal/catalog/catalog.go
// Brief: Service registry loading, validation, and lookup.

// Package catalog reads catalog.yaml, the registry mapping service names to
// their project directory, cloud provider, and type.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const FileName = "catalog.yaml"

// Entry is one service in the registry. Type is documentation-only and has
// no effect on resolution.
type Entry struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Provider    string `yaml:"provider"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`
}

type file struct {
	Services []Entry `yaml:"services"`
}

var validTypes = map[string]struct{}{
	"stateless": {},
	"stateful":  {},
}

// Error reports an unreadable or malformed registry.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("catalog %s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFoundError reports a service name with no catalog entry.
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("service %q not found in catalog", e.Name)
	}
	return fmt.Sprintf("service %q not found in catalog (available: %s)",
		e.Name, strings.Join(e.Available, ", "))
}

// Load reads and validates catalog.yaml under root. Entries are returned in
// registry order; any validation problem fails the whole load so a broken
// registry is caught before files are touched.
func Load(root string) ([]Entry, error) {
	path := filepath.Join(root, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "unreadable", Err: err}
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &Error{Path: path, Reason: "malformed YAML", Err: err}
	}
	if len(f.Services) == 0 {
		return nil, &Error{Path: path, Reason: "no services defined"}
	}
	if errs := validate(root, f.Services); len(errs) > 0 {
		return nil, &Error{Path: path, Reason: strings.Join(errs, "; ")}
	}
	return f.Services, nil
}

func validate(root string, entries []Entry) []string {
	var errs []string
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		switch {
		case strings.TrimSpace(e.Name) == "":
			errs = append(errs, fmt.Sprintf("entry %d: missing name", i))
			continue
		case strings.TrimSpace(e.Path) == "":
			errs = append(errs, fmt.Sprintf("service %q: missing path", e.Name))
		case strings.TrimSpace(e.Provider) == "":
			errs = append(errs, fmt.Sprintf("service %q: missing provider", e.Name))
		}
		if _, ok := validTypes[e.Type]; !ok {
			errs = append(errs, fmt.Sprintf("service %q: invalid type %q (must be stateless or stateful)", e.Name, e.Type))
		}
		if _, dup := seen[e.Name]; dup {
			errs = append(errs, fmt.Sprintf("service %q: duplicate name", e.Name))
		}
		seen[e.Name] = struct{}{}
		if e.Path != "" {
			if info, err := os.Stat(filepath.Join(root, e.Path)); err != nil || !info.IsDir() {
				errs = append(errs, fmt.Sprintf("service %q: path not found: %s", e.Name, e.Path))
			}
		}
	}
	return errs
}

// Find returns the entry with the given name.
func Find(entries []Entry, name string) (Entry, error) {
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	available := make([]string, 0, len(entries))
	for _, e := range entries {
		available = append(available, e.Name)
	}
	sort.Strings(available)
	return Entry{}, &NotFoundError{Name: name, Available: available}
}

// FilterProvider keeps only entries targeting the given provider; an empty
// provider keeps everything.
func FilterProvider(entries []Entry, provider string) []Entry {
	if strings.TrimSpace(provider) == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Provider == provider {
			out = append(out, e)
		}
	}
	return out
}
