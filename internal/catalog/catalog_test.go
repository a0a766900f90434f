package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
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

func writeCatalog(t *testing.T, root, content string) {
	t.Helper()
	writeFile(t, filepath.Join(root, FileName), content)
}

func TestLoadValidCatalog(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "services", "az-app1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeCatalog(t, root, `
services:
  - name: az-app1
    path: services/az-app1
    provider: azure
    type: stateless
    description: demo app
`)
	entries, err := Load(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d want=1", len(entries))
	}
	if entries[0].Provider != "azure" || entries[0].Type != "stateless" {
		t.Fatalf("entry=%+v", entries[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("err=%v, want *Error", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	root := t.TempDir()
	writeCatalog(t, root, "services: [::\n")
	_, err := Load(root)
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("err=%v, want *Error", err)
	}
	if !strings.Contains(err.Error(), FileName) {
		t.Fatalf("error does not name the registry file: %v", err)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "ok"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cases := []struct {
		name    string
		yaml    string
		wantSub string
	}{
		{
			name:    "missing name",
			yaml:    "services:\n  - path: ok\n    provider: azure\n    type: stateless\n",
			wantSub: "missing name",
		},
		{
			name:    "bad type",
			yaml:    "services:\n  - name: a\n    path: ok\n    provider: azure\n    type: serverless\n",
			wantSub: "invalid type",
		},
		{
			name:    "missing provider",
			yaml:    "services:\n  - name: a\n    path: ok\n    type: stateful\n",
			wantSub: "missing provider",
		},
		{
			name:    "missing path dir",
			yaml:    "services:\n  - name: a\n    path: nope\n    provider: azure\n    type: stateless\n",
			wantSub: "path not found",
		},
		{
			name:    "duplicate names",
			yaml:    "services:\n  - name: a\n    path: ok\n    provider: azure\n    type: stateless\n  - name: a\n    path: ok\n    provider: azure\n    type: stateless\n",
			wantSub: "duplicate name",
		},
		{
			name:    "empty registry",
			yaml:    "services: []\n",
			wantSub: "no services",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			writeCatalog(t, root, tc.yaml)
			_, err := Load(root)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("err=%v, want substring %q", err, tc.wantSub)
			}
		})
	}
}

func TestFindUnknownServiceNamesIt(t *testing.T) {
	entries := []Entry{{Name: "az-app1"}, {Name: "az-app2"}}
	_, err := Find(entries, "missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err=%v, want *NotFoundError", err)
	}
	if nf.Name != "missing" {
		t.Fatalf("name=%q", nf.Name)
	}
	if !strings.Contains(err.Error(), "az-app1") {
		t.Fatalf("error should list available services: %v", err)
	}
}

func TestFilterProvider(t *testing.T) {
	entries := []Entry{
		{Name: "a", Provider: "azure"},
		{Name: "b", Provider: "aws"},
		{Name: "c", Provider: "azure"},
	}
	got := FilterProvider(entries, "azure")
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Fatalf("filtered=%+v", got)
	}
	if got := FilterProvider(entries, ""); len(got) != 3 {
		t.Fatalf("empty provider should keep all, got %d", len(got))
	}
}
