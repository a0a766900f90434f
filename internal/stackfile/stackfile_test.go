package stackfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/pulumiw/internal/configtree"
)

func mustParse(t *testing.T, src string) *configtree.Tree {
	t.Helper()
	tree, err := configtree.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func TestRenderHeaderAndConfigBlock(t *testing.T) {
	mapped := mustParse(t, "az-app1:location: westeurope\naz-app1:tags:\n  env: dev\n")
	doc := Build(nil, mapped)
	out, err := Render(doc, Header("azure", "dev"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	if !strings.HasPrefix(text, "# AUTO-GENERATED by pulumiw - DO NOT EDIT\n") {
		t.Fatalf("missing protective header:\n%s", text)
	}
	if !strings.Contains(text, "services/config/azure/Pulumi.dev.yaml") {
		t.Fatalf("header does not name the global config source:\n%s", text)
	}
	if !strings.Contains(text, "config:\n") || !strings.Contains(text, "az-app1:location: westeurope") {
		t.Fatalf("config block missing mapped keys:\n%s", text)
	}
}

func TestBuildCarriesPulumiOwnedKeysOnly(t *testing.T) {
	previous := mustParse(t, `
encryptionsalt: v1:abc123
config:
  az-app1:stale: value
handEdited: nope
`)
	mapped := mustParse(t, "az-app1:location: westeurope\n")
	doc := Build(previous, mapped)

	if _, ok := doc.Get("encryptionsalt"); !ok {
		t.Fatalf("encryptionsalt not carried forward")
	}
	if _, ok := doc.Get("handEdited"); ok {
		t.Fatalf("hand-edited key carried forward")
	}
	config, _ := doc.Get("config")
	if _, ok := config.Get("az-app1:stale"); ok {
		t.Fatalf("previous config block leaked into output; config must be replaced wholesale")
	}
	if v, ok := config.Get("az-app1:location"); !ok || v.Value != "westeurope" {
		t.Fatalf("config=%+v", config)
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svc", "Pulumi.dev.yaml")
	mapped := mustParse(t, "svc:location: westeurope\nsvc:tags:\n  env: dev\n")

	generate := func() []byte {
		t.Helper()
		previous, _, err := ReadPrevious(path)
		if err != nil {
			t.Fatalf("read previous: %v", err)
		}
		out, err := Render(Build(previous, mapped), Header("azure", "dev"))
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if err := Write(path, out); err != nil {
			t.Fatalf("write: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		return got
	}

	first := generate()
	second := generate()
	if string(first) != string(second) {
		t.Fatalf("generation not byte-idempotent:\n%s\nvs:\n%s", first, second)
	}
}

func TestWriteLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Pulumi.dev.yaml")
	if err := Write(path, []byte("config: {}\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "Pulumi.dev.yaml" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}

func TestReadPreviousMissingIsNil(t *testing.T) {
	tree, raw, err := ReadPrevious(filepath.Join(t.TempDir(), "Pulumi.dev.yaml"))
	if err != nil || tree != nil || raw != nil {
		t.Fatalf("tree=%v raw=%v err=%v, want all nil", tree, raw, err)
	}
}

func TestDiffReportsChangesAndSilenceOnEqual(t *testing.T) {
	previous := []byte("config:\n  svc:location: westeurope\n")
	next := []byte("config:\n  svc:location: northeurope\n")
	out := Diff("Pulumi.dev.yaml", previous, next)
	if !strings.Contains(out, "-  svc:location: westeurope") || !strings.Contains(out, "+  svc:location: northeurope") {
		t.Fatalf("diff missing expected hunks:\n%s", out)
	}
	if Diff("Pulumi.dev.yaml", next, next) != "" {
		t.Fatalf("diff of identical content should be empty")
	}
}
