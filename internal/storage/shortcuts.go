package storage

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Shortcuts is the alias → expansion map, persisted as one JSON object.
// The file is read wholesale on load and rewritten wholesale on every change.
type Shortcuts struct {
	path string

	mu      sync.RWMutex
	aliases map[string]string
}

// LoadShortcuts reads the shortcut file at path. The seed is used only when
// the file does not exist yet, so deletions of seeded aliases survive a reload.
// Path "" keeps the seeded map in memory only.
func LoadShortcuts(path string, seed map[string]string) (*Shortcuts, error) {
	s := &Shortcuts{path: path, aliases: map[string]string{}}
	if path == "" {
		maps.Copy(s.aliases, seed)
		return s, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		maps.Copy(s.aliases, seed)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var stored map[string]string
	if err := json.Unmarshal(data, &stored); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	maps.Copy(s.aliases, stored)
	return s, nil
}

// Lookup returns the expansion for alias.
func (s *Shortcuts) Lookup(alias string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.aliases[alias]
	return v, ok
}

// Aliases returns all aliases in sorted order.
func (s *Shortcuts) Aliases() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.aliases))
}

// Expand replaces every word that is an alias by the words of its expansion.
// Unknown words are kept as typed.
func (s *Shortcuts) Expand(words []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(words))
	for _, w := range words {
		if exp, ok := s.aliases[w]; ok {
			out = append(out, strings.Fields(exp)...)
			continue
		}
		out = append(out, w)
	}
	return out
}

// Add sets alias to text and persists the map.
func (s *Shortcuts) Add(alias, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.aliases[alias]
	s.aliases[alias] = text
	if err := s.save(); err != nil {
		if existed {
			s.aliases[alias] = prev
		} else {
			delete(s.aliases, alias)
		}
		return err
	}
	return nil
}

// Delete removes alias and persists the map. It reports whether alias existed.
func (s *Shortcuts) Delete(alias string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.aliases[alias]
	if !ok {
		return false, nil
	}
	delete(s.aliases, alias)
	if err := s.save(); err != nil {
		s.aliases[alias] = prev
		return true, err
	}
	return true, nil
}

// save atomically writes the map with sorted keys. Callers hold s.mu.
func (s *Shortcuts) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// encoding/json writes map keys in sorted order.
	data, err := json.MarshalIndent(s.aliases, "", "    ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	data = append(data, '\n')

	// Atomic write: write to temp file then rename.
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
