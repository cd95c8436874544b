// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the archive sections file. The file is a flat YAML (or
// JSON) mapping of section name to section settings; sections are returned in
// the order they appear in the document.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nessie/pkg/types"
)

// DefaultPath is the sections file read when no --config is given.
const DefaultPath = "config.yml"

// Load reads the sections file at path.
func Load(path string) ([]types.Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file %s not found", path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	sections, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return sections, nil
}

// Parse decodes a sections document. An empty document yields no sections.
func Parse(data []byte) ([]types.Section, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of section names, got %s", kindName(root.Kind))
	}

	sections := make([]types.Section, 0, len(root.Content)/2)
	seen := make(map[string]bool, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		body := root.Content[i+1]

		if seen[name] {
			return nil, fmt.Errorf("line %d: duplicate section %q", root.Content[i].Line, name)
		}
		seen[name] = true

		s, err := decodeSection(name, body)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// sectionDoc is the on-disk shape of a section. compress_top_level_audio is
// the older spelling of convert_to_mp3 and is still accepted.
type sectionDoc struct {
	types.Section `yaml:",inline"`

	CompressTopLevelAudio bool `yaml:"compress_top_level_audio"`
}

func decodeSection(name string, node *yaml.Node) (types.Section, error) {
	if node.Kind != yaml.MappingNode {
		return types.Section{}, fmt.Errorf("section %q: expected a mapping, got %s", name, kindName(node.Kind))
	}

	// Re-encode the node so the strict decoder can reject unknown keys.
	raw, err := yaml.Marshal(node)
	if err != nil {
		return types.Section{}, fmt.Errorf("section %q: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var doc sectionDoc
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return types.Section{}, fmt.Errorf("section %q: %w", name, err)
	}
	s := doc.Section
	s.Name = name
	if doc.CompressTopLevelAudio {
		s.ConvertToMP3 = true
	}

	if err := Validate(s); err != nil {
		return types.Section{}, err
	}
	return s, nil
}

// Validate checks that a section names both directories.
func Validate(s types.Section) error {
	if s.Local == "" {
		return fmt.Errorf("section %q: local is required", s.Name)
	}
	if s.Remote == "" {
		return fmt.Errorf("section %q: remote is required", s.Name)
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "empty node"
}
