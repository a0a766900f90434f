package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/example/pulumiw/internal/configtree"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustParse(t *testing.T, src string) *configtree.Tree {
	t.Helper()
	tree, err := configtree.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func TestReadGlobalMissingIsFatal(t *testing.T) {
	root := t.TempDir()
	_, err := ReadGlobal(root, "azure", "dev")
	var missing *MissingGlobalConfigError
	if !errors.As(err, &missing) {
		t.Fatalf("err=%v, want *MissingGlobalConfigError", err)
	}
	if missing.Provider != "azure" || missing.Stack != "dev" {
		t.Fatalf("missing=%+v", missing)
	}
}

func TestReadGlobalParseErrorNamesFile(t *testing.T) {
	root := t.TempDir()
	path := GlobalConfigPath(root, "azure", "dev")
	writeFile(t, path, "location: [\n")
	_, err := ReadGlobal(root, "azure", "dev")
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("err=%v, want parse error naming %s", err, path)
	}
}

func TestReadOverrideMissingIsEmptyTree(t *testing.T) {
	dir := t.TempDir()
	tree, err := ReadOverride(dir, "dev")
	if err != nil {
		t.Fatalf("missing override must not error: %v", err)
	}
	if !tree.IsMapping() || tree.Len() != 0 {
		t.Fatalf("tree=%+v, want empty mapping", tree)
	}
}

func TestReadOverrideParseErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := OverridePath(dir, "dev")
	writeFile(t, path, "broken: [\n")
	_, err := ReadOverride(dir, "dev")
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("err=%v, want parse error naming %s", err, path)
	}
}

func TestProjectName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Pulumi.yaml"), "name: az-app1\nruntime: go\n")
	name, err := ProjectName(dir)
	if err != nil {
		t.Fatalf("project name: %v", err)
	}
	if name != "az-app1" {
		t.Fatalf("name=%q", name)
	}
}

func TestProjectNameMissingFileOrField(t *testing.T) {
	dir := t.TempDir()
	if _, err := ProjectName(dir); err == nil {
		t.Fatalf("expected error for missing Pulumi.yaml")
	}
	writeFile(t, filepath.Join(dir, "Pulumi.yaml"), "runtime: go\n")
	if _, err := ProjectName(dir); err == nil {
		t.Fatalf("expected error for missing name field")
	}
}

func TestResolveOverrideBeatsBroadcastBeatsGlobal(t *testing.T) {
	global := mustParse(t, `
env: fromGlobal
shared: fromGlobal
projectConfig:
  env: fromBroadcast
  broadcastOnly: b
`)
	override := mustParse(t, "env: fromOverride\n")
	got, err := Resolve(global, override)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	cases := []struct {
		key  string
		want any
	}{
		{"env", "fromOverride"},
		{"shared", "fromGlobal"},
		{"broadcastOnly", "b"},
	}
	for _, tc := range cases {
		v, ok := got.Get(tc.key)
		if !ok || v.Value != tc.want {
			t.Fatalf("%s=%v want=%v", tc.key, v, tc.want)
		}
	}
	if _, ok := got.Get(BroadcastKey); ok {
		t.Fatalf("reserved %s key leaked into resolved config", BroadcastKey)
	}
}

func TestResolveBroadcastKeysAppendAfterGlobalKeys(t *testing.T) {
	global := mustParse(t, `
location: westeurope
projectConfig:
  envStackRef: org/env/dev
tags:
  env: dev
`)
	got, err := Resolve(global, configtree.NewMapping())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"location", "tags", "envStackRef"}
	if !reflect.DeepEqual(got.Keys(), want) {
		t.Fatalf("keys=%v want=%v", got.Keys(), want)
	}
}

func TestResolveNoOverrideEqualsGlobal(t *testing.T) {
	global := mustParse(t, "location: westeurope\ntags:\n  env: dev\n")
	got, err := Resolve(global, configtree.NewMapping())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(got.Keys(), []string{"location", "tags"}) {
		t.Fatalf("keys=%v", got.Keys())
	}
	loc, _ := got.Get("location")
	if loc.Value != "westeurope" {
		t.Fatalf("location=%v", loc.Value)
	}
}

func TestResolveNestedOverrideMergesMapping(t *testing.T) {
	global := mustParse(t, "location: westeurope\ntags:\n  env: dev\n")
	override := mustParse(t, "tags:\n  app: az-app1\n")
	got, err := Resolve(global, override)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	tags, _ := got.Get("tags")
	if !reflect.DeepEqual(tags.Keys(), []string{"env", "app"}) {
		t.Fatalf("tags keys=%v", tags.Keys())
	}
}

func TestResolveRejectsScalarBroadcast(t *testing.T) {
	global := mustParse(t, "projectConfig: not-a-mapping\n")
	if _, err := Resolve(global, nil); err == nil {
		t.Fatalf("expected error for scalar projectConfig")
	}
}
