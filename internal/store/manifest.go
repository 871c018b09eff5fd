package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest summarizes a completed pipeline run for the downstream book
// assembler: coverage counts and the values that remain unrecoverable.
type Manifest struct {
	MaxNumber int   `yaml:"max_number"`
	Extracted int   `yaml:"extracted"`
	Composed  int   `yaml:"composed"`
	Covered   int   `yaml:"covered"`
	Gaps      []int `yaml:"gaps"`
}

// BuildManifest captures the store's coverage of [1, maxNumber].
func (s *Store) BuildManifest(maxNumber int) Manifest {
	covered := 0
	for v := 1; v <= maxNumber; v++ {
		if s.Has(v) {
			covered++
		}
	}
	return Manifest{
		MaxNumber: maxNumber,
		Extracted: s.Count(OriginExtracted),
		Composed:  s.Count(OriginComposed),
		Covered:   covered,
		Gaps:      s.Gaps(maxNumber),
	}
}

// WriteManifest writes the manifest as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: manifest path comes from config
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}
