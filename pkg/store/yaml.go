package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tosih/denso-rom-tool/pkg/rom"
)

// SidecarExt is the extension of the YAML file written next to a ROM.
const SidecarExt = ".yaml"

// YAMLStore keeps one document per ROM in a sidecar file: "a.bin" -> "a.yaml".
type YAMLStore struct{}

func NewYAMLStore() *YAMLStore {
	return &YAMLStore{}
}

// Path returns the sidecar path for a ROM path.
func (s *YAMLStore) Path(key string) string {
	return rom.SidecarPath(key, SidecarExt)
}

func (s *YAMLStore) Load(_ context.Context, key string) (*Document, error) {
	path := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &doc, nil
}

func (s *YAMLStore) Save(_ context.Context, key string, doc *Document) error {
	path := s.Path(key)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *YAMLStore) Close() error { return nil }
