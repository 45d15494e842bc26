package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseManifest(t *testing.T) {
	data := []byte(`
commands:
  - id: who_left
    triggers: [who_left, wholeft]
    description: Who left the chat?
  - id: reload
    disabled: true
  - id: [not, a, string]
  - id: help
    description: ""
`)
	defs, err := ParseManifest(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(defs) != 3 {
		t.Fatalf("expected 3 definitions, got %+v", defs)
	}
	if defs[0].ID != "who_left" || len(defs[0].Triggers) != 2 || defs[0].Description == nil || *defs[0].Description != "Who left the chat?" {
		t.Fatalf("unexpected first definition %+v", defs[0])
	}
	if defs[1].Err == nil {
		t.Fatalf("expected malformed entry to carry an error")
	}
	if defs[2].ID != "help" || defs[2].Description == nil || *defs[2].Description != "" {
		t.Fatalf("unexpected help definition %+v", defs[2])
	}
}

func TestParseManifest_InvalidDocument(t *testing.T) {
	if _, err := ParseManifest([]byte("commands: [")); err == nil {
		t.Fatalf("expected error for broken yaml")
	}
}

func TestManifestSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")
	if err := os.WriteFile(path, []byte("commands:\n  - id: help\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	defs, err := ManifestSource{Path: path}.Definitions(context.Background())
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if len(defs) != 1 || defs[0].ID != "help" {
		t.Fatalf("unexpected definitions %+v", defs)
	}

	if _, err := (ManifestSource{Path: filepath.Join(t.TempDir(), "missing.yaml")}).Definitions(context.Background()); err == nil {
		t.Fatalf("expected error for missing manifest")
	}
}

func TestStaticSource_SortedIDs(t *testing.T) {
	factories := Factories{"b": nil, "a": nil, "c": nil}
	defs, err := StaticSource(factories).Definitions(context.Background())
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	if len(defs) != 3 || defs[0].ID != "a" || defs[1].ID != "b" || defs[2].ID != "c" {
		t.Fatalf("unexpected definitions %+v", defs)
	}
}
