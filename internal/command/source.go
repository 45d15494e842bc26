package command

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Definition describes one handler to load. Triggers and Description, when set,
// override the values reported by the handler. Err marks a definition that could
// not be decoded; loading it fails without affecting the others.
type Definition struct {
	ID          string   `yaml:"id"`
	Triggers    []string `yaml:"triggers,omitempty"`
	Description *string  `yaml:"description,omitempty"`
	Disabled    bool     `yaml:"disabled,omitempty"`

	Err error `yaml:"-"`
}

// Source enumerates the handler definitions available for discovery.
type Source interface {
	Definitions(ctx context.Context) ([]Definition, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]Definition, error)

func (f SourceFunc) Definitions(ctx context.Context) ([]Definition, error) { return f(ctx) }

// StaticSource yields one definition per factory, without overrides.
func StaticSource(factories Factories) Source {
	return SourceFunc(func(context.Context) ([]Definition, error) {
		ids := make([]string, 0, len(factories))
		for id := range factories {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		defs := make([]Definition, 0, len(ids))
		for _, id := range ids {
			defs = append(defs, Definition{ID: id})
		}
		return defs, nil
	})
}

// ManifestSource reads definitions from a YAML file on every discovery, so edits
// to the file are picked up by a reload.
//
//	commands:
//	  - id: who_left
//	    triggers: [who_left, wholeft]
//	  - id: reload
//	    disabled: true
type ManifestSource struct {
	Path string
}

func (s ManifestSource) Definitions(context.Context) ([]Definition, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a manifest. A malformed entry is returned with Err set
// instead of failing the whole manifest. Disabled entries are skipped.
func ParseManifest(data []byte) ([]Definition, error) {
	var doc struct {
		Commands []yaml.Node `yaml:"commands"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	defs := make([]Definition, 0, len(doc.Commands))
	for i, node := range doc.Commands {
		var def Definition
		if err := node.Decode(&def); err != nil {
			defs = append(defs, Definition{
				ID:  fmt.Sprintf("entry #%d", i+1),
				Err: fmt.Errorf("decode manifest entry at line %d: %w", node.Line, err),
			})
			continue
		}
		if def.Disabled {
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}
