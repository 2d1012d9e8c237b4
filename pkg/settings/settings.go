// Package settings implements the typed settings store (spec component B):
// get/set/add/unset against a single TOML layer file's [settings] table,
// persisted atomically so concurrent `rote settings` invocations and a
// running `rote install` never see a half-written file.
//
// Grounded on the teacher's config.SaveConfig / global.SaveGlobalConfig,
// which always re-read-then-rewrite the whole file; the difference here is
// that settings.Save decodes into a generic map first so sibling sections
// ([tools], [tasks], ...) written by hand or by other rote commands survive
// a settings-only edit untouched.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Store wraps a single TOML file's [settings] table.
type Store struct {
	path string
}

func Open(path string) *Store {
	return &Store{path: path}
}

func (s *Store) readDoc() (map[string]interface{}, error) {
	doc := make(map[string]interface{})
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) settingsTable(doc map[string]interface{}) map[string]interface{} {
	raw, ok := doc["settings"]
	if !ok {
		m := make(map[string]interface{})
		doc["settings"] = m
		return m
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		m = make(map[string]interface{})
		doc["settings"] = m
	}
	return m
}

// Get returns a setting's string value and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	doc, err := s.readDoc()
	if err != nil {
		return "", false, err
	}
	table := s.settingsTable(doc)
	v, ok := table[key]
	if !ok {
		return "", false, nil
	}
	return fmt.Sprintf("%v", v), true, nil
}

// All returns every setting as a flat string map, sorted by key for stable
// `rote settings ls` output.
func (s *Store) All() (map[string]string, error) {
	doc, err := s.readDoc()
	if err != nil {
		return nil, err
	}
	table := s.settingsTable(doc)
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out, nil
}

// Set writes a single key, overwriting any previous value.
func (s *Store) Set(key, value string) error {
	doc, err := s.readDoc()
	if err != nil {
		return err
	}
	s.settingsTable(doc)[key] = value
	return s.writeDoc(doc)
}

// Unset removes a single key, no-op if absent.
func (s *Store) Unset(key string) error {
	doc, err := s.readDoc()
	if err != nil {
		return err
	}
	delete(s.settingsTable(doc), key)
	return s.writeDoc(doc)
}

// Add appends value to a comma-joined multi-value setting (e.g.
// "trusted_paths"). value is itself split on commas, so a single call can
// add several entries at once; new entries are appended in argument order
// after whatever is already present, and entries already present (existing
// or earlier in this same call) are skipped rather than duplicated.
func (s *Store) Add(key, value string) error {
	doc, err := s.readDoc()
	if err != nil {
		return err
	}
	table := s.settingsTable(doc)
	existing := ""
	if v, ok := table[key]; ok {
		existing = fmt.Sprintf("%v", v)
	}
	values := splitNonEmpty(existing)
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}
	for _, v := range splitNonEmpty(value) {
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	table[key] = strings.Join(values, ",")
	return s.writeDoc(doc)
}

// Remove deletes value from a comma-joined multi-value setting.
func (s *Store) Remove(key, value string) error {
	doc, err := s.readDoc()
	if err != nil {
		return err
	}
	table := s.settingsTable(doc)
	existing := ""
	if v, ok := table[key]; ok {
		existing = fmt.Sprintf("%v", v)
	}
	values := splitNonEmpty(existing)
	kept := values[:0]
	for _, v := range values {
		if v != value {
			kept = append(kept, v)
		}
	}
	table[key] = strings.Join(kept, ",")
	return s.writeDoc(doc)
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// writeDoc persists the whole document atomically via temp-file-then-rename,
// the same pattern the teacher used for config.SaveConfig.
func (s *Store) writeDoc(doc map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
