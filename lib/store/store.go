// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists the bot's configuration document: the
// default join membership and the set of role-menu definitions. The
// document is a single JSON file, read and written whole. Operators
// may hand-edit it; comments and trailing commas are tolerated on
// load.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/VinylRUS/mahrgibrolebot/lib/menu"
	"github.com/VinylRUS/mahrgibrolebot/lib/ref"
)

// State is the whole persisted document.
type State struct {
	// DefaultJoinMembership is granted automatically to every arriving
	// member. Zero means the feature is off.
	DefaultJoinMembership ref.MembershipID `json:"default_join_membership,omitzero"`

	// Menus are the persisted role menus, in creation order.
	Menus []menu.Definition `json:"menus"`
}

// Clone returns a deep copy. Mutating the copy never affects the
// original.
func (s State) Clone() State {
	clone := s
	clone.Menus = make([]menu.Definition, len(s.Menus))
	for i, m := range s.Menus {
		clone.Menus[i] = m
		clone.Menus[i].MembershipIDs = append([]ref.MembershipID(nil), m.MembershipIDs...)
	}
	return clone
}

// AddMenu appends a menu definition, enforcing document uniqueness:
// no two menus may share a menu ID, and no two menus may point at the
// same message.
func (s *State) AddMenu(definition menu.Definition) error {
	for _, existing := range s.Menus {
		if existing.MenuID == definition.MenuID {
			return fmt.Errorf("store: menu %s already exists", definition.MenuID)
		}
		if existing.SpaceID == definition.SpaceID && existing.MessageID == definition.MessageID {
			return fmt.Errorf("store: message %s in space %s already carries a menu",
				definition.MessageID, definition.SpaceID)
		}
	}
	s.Menus = append(s.Menus, definition)
	return nil
}

// RemoveMenu deletes the menu attached to the given message in the
// given space. Reports whether a menu was found.
func (s *State) RemoveMenu(spaceID ref.SpaceID, messageID ref.MessageID) bool {
	for i, existing := range s.Menus {
		if existing.SpaceID == spaceID && existing.MessageID == messageID {
			s.Menus = append(s.Menus[:i], s.Menus[i+1:]...)
			return true
		}
	}
	return false
}

// FindMenu returns the menu attached to the given message in the
// given space.
func (s *State) FindMenu(spaceID ref.SpaceID, messageID ref.MessageID) (menu.Definition, bool) {
	for _, existing := range s.Menus {
		if existing.SpaceID == spaceID && existing.MessageID == messageID {
			return existing, true
		}
	}
	return menu.Definition{}, false
}

// Store binds the document to a file path and serializes writers.
type Store struct {
	path   string
	logger *slog.Logger

	// mu serializes Save and Mutate. Load takes it too so a reader
	// never observes a half-written rename on filesystems without
	// atomic rename semantics.
	mu sync.Mutex
}

// Open binds a store to a document path. The file need not exist yet.
func Open(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Load reads the document. A missing file yields empty state. A
// corrupt or unreadable file is logged and yields empty state too:
// startup must never crash on a bad document, and the next Save
// rewrites it whole.
func (s *Store) Load() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read menu document, starting empty",
				"path", s.path,
				"error", err,
			)
		}
		return State{}
	}

	var state State
	if err := json.Unmarshal(jsonc.ToJSON(data), &state); err != nil {
		s.logger.Warn("failed to parse menu document, starting empty",
			"path", s.path,
			"error", err,
		)
		return State{}
	}
	return state
}

// Save overwrites the document with the given state. The write is
// atomic: a temp file in the same directory, fsynced, then renamed
// over the target.
func (s *Store) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(state)
}

func (s *Store) save(state State) error {
	if state.Menus == nil {
		state.Menus = []menu.Definition{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encoding menu document: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(s.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("store: creating state directory: %w", err)
	}

	temp, err := os.CreateTemp(directory, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: creating temp file: %w", err)
	}
	tempName := temp.Name()

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(tempName)
		return fmt.Errorf("store: writing temp file: %w", err)
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempName)
		return fmt.Errorf("store: syncing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("store: closing temp file: %w", err)
	}
	if err := os.Chmod(tempName, 0600); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("store: setting document mode: %w", err)
	}
	if err := os.Rename(tempName, s.path); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("store: renaming temp file: %w", err)
	}
	return nil
}

// Mutate runs a read-modify-write cycle under the writer lock: load
// the current document, apply fn, and persist the result. If fn
// returns an error nothing is written. All command handlers go
// through Mutate so concurrent edits never lose updates.
func (s *Store) Mutate(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load()
	if err := fn(&state); err != nil {
		return err
	}
	return s.save(state)
}
