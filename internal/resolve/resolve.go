// File: internal/resolve/resolve.go
// Brief: Config layer reading and layered resolution per (service, stack).

// Package resolve assembles the effective configuration for one service on
// one stack: provider-wide global config (required), the projectConfig
// broadcast block it carries, and the service override file (optional),
// merged in that precedence order.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/pulumiw/internal/configtree"
	"gopkg.in/yaml.v3"
)

// BroadcastKey is the reserved global-config key whose mapping is
// distributed into every service of the provider. The key itself never
// reaches resolved output.
const BroadcastKey = "projectConfig"

// MissingGlobalConfigError reports an absent global config file. Global
// config is a hard requirement per (provider, stack); only overrides are
// optional.
type MissingGlobalConfigError struct {
	Provider string
	Stack    string
	Path     string
}

func (e *MissingGlobalConfigError) Error() string {
	return fmt.Sprintf("global config not found for provider %q stack %q: create %s",
		e.Provider, e.Stack, e.Path)
}

// GlobalConfigPath returns services/config/<provider>/Pulumi.<stack>.yaml
// under the repository root.
func GlobalConfigPath(root, provider, stack string) string {
	return filepath.Join(root, "services", "config", provider, "Pulumi."+stack+".yaml")
}

// OverridePath returns the service-local override.Pulumi.<stack>.yaml.
func OverridePath(serviceDir, stack string) string {
	return filepath.Join(serviceDir, "override.Pulumi."+stack+".yaml")
}

// GeneratedPath returns the machine-owned Pulumi.<stack>.yaml the writer
// produces.
func GeneratedPath(serviceDir, stack string) string {
	return filepath.Join(serviceDir, "Pulumi."+stack+".yaml")
}

// ReadGlobal loads the provider/stack global config. Absence is fatal.
func ReadGlobal(root, provider, stack string) (*configtree.Tree, error) {
	path := GlobalConfigPath(root, provider, stack)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingGlobalConfigError{Provider: provider, Stack: stack, Path: path}
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	tree, err := configtree.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if !tree.IsMapping() {
		return nil, fmt.Errorf("parse %s: top-level document must be a mapping", path)
	}
	return tree, nil
}

// ReadOverride loads the service override for a stack. A missing file is
// valid and yields an empty tree; only a present-but-broken file fails.
func ReadOverride(serviceDir, stack string) (*configtree.Tree, error) {
	path := OverridePath(serviceDir, stack)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return configtree.NewMapping(), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	tree, err := configtree.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if !tree.IsMapping() {
		return nil, fmt.Errorf("parse %s: top-level document must be a mapping", path)
	}
	return tree, nil
}

// ProjectName reads name: from the service's Pulumi.yaml, the Pulumi project
// definition that namespaces config keys.
func ProjectName(serviceDir string) (string, error) {
	path := filepath.Join(serviceDir, "Pulumi.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	var doc struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Name == "" {
		return "", fmt.Errorf("%s: missing required field name", path)
	}
	return doc.Name, nil
}

// Resolve merges the three layers, precedence low to high: global ordinary
// keys, the broadcast block, then the override. A broadcast key beats a
// plain global key of the same name and loses to an override; the broadcast
// key itself is stripped from the output. Pure function over its inputs.
func Resolve(global, override *configtree.Tree) (*configtree.Tree, error) {
	base := global.Without(BroadcastKey)
	broadcast, ok := global.Get(BroadcastKey)
	if ok && !broadcast.IsMapping() {
		return nil, fmt.Errorf("%s must be a mapping, got %s", BroadcastKey, broadcast.Kind)
	}
	merged := configtree.Merge(base, broadcast)
	return configtree.Merge(merged, override), nil
}
