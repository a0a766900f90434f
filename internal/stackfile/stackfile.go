// File: internal/stackfile/stackfile.go
// Brief: Rendering and atomic writing of generated Pulumi.<stack>.yaml files.

// Package stackfile owns the machine-generated stack file: a protective
// header, Pulumi-owned keys carried forward from the previous generation,
// and a config block holding exactly the mapped keys. Generation is
// idempotent and all-or-nothing.
package stackfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/pulumiw/internal/configtree"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

// carriedKeys are top-level keys Pulumi itself writes into stack files
// (secret salt and secrets provider selection). They are carried forward
// verbatim so regeneration does not break secret decryption; they never feed
// the config merge.
var carriedKeys = map[string]struct{}{
	"encryptionsalt":  {},
	"secretsprovider": {},
}

// Header returns the warning comment lines for a generated file.
func Header(provider, stack string) []string {
	return []string{
		"AUTO-GENERATED by pulumiw - DO NOT EDIT",
		fmt.Sprintf("Config inherited from: services/config/%s/Pulumi.%s.yaml", provider, stack),
		fmt.Sprintf("Service overrides: override.Pulumi.%s.yaml", stack),
	}
}

// ReadPrevious loads the previously generated file, or nil when absent. The
// result is used only to carry Pulumi-owned keys forward and to diff; it is
// never an input to config resolution.
func ReadPrevious(path string) (*configtree.Tree, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	tree, err := configtree.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tree, raw, nil
}

// Build composes the generated document: carried keys from the previous file
// in their original order, then the config block holding mapped verbatim.
func Build(previous, mapped *configtree.Tree) *configtree.Tree {
	doc := configtree.NewMapping()
	if previous != nil {
		for _, p := range previous.Pairs {
			if _, ok := carriedKeys[p.Key]; !ok {
				continue
			}
			doc.Pairs = append(doc.Pairs, configtree.Pair{Key: p.Key, Value: p.Value.Clone()})
		}
	}
	config := mapped
	if config == nil {
		config = configtree.NewMapping()
	}
	doc.Pairs = append(doc.Pairs, configtree.Pair{Key: "config", Value: config.Clone()})
	return doc
}

// Render serializes header plus document to the final file bytes.
func Render(doc *configtree.Tree, header []string) ([]byte, error) {
	var buf bytes.Buffer
	for _, line := range header {
		fmt.Fprintf(&buf, "# %s\n", line)
	}
	buf.WriteByte('\n')
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode stack file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode stack file: %w", err)
	}
	return buf.Bytes(), nil
}

// Write lands data at path atomically: parent directories are created, the
// content goes to a temp file first, and a rename makes it visible. A failure
// never leaves a partial file at the final path.
func Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Diff returns a unified diff between the previous and next file contents,
// or "" when they are identical.
func Diff(path string, previous, next []byte) string {
	if bytes.Equal(previous, next) {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(previous)),
		B:        difflib.SplitLines(string(next)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	}
	out, _ := difflib.GetUnifiedDiffString(diff)
	return out
}
