// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package swapjournal

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/blake3"

	"github.com/dfolaunch/dfolaunch/lib/codec"
	"github.com/dfolaunch/dfolaunch/lib/pathswap"
)

const formatVersion = 1

// Entry is one swap whose switch-back has not completed.
type Entry struct {
	// ID is derived from the three paths; see EntryID.
	ID string `cbor:"id"`

	Normal string `cbor:"normal"`
	Custom string `cbor:"custom"`
	Temp   string `cbor:"temp"`

	// LaunchID identifies the launch that performed the swap.
	LaunchID string `cbor:"launch_id"`

	// RecordedAt is when the intent was written.
	RecordedAt time.Time `cbor:"recorded_at"`
}

// Spec returns the swap the entry describes.
func (e Entry) Spec() pathswap.Spec {
	return pathswap.Spec{Normal: e.Normal, Custom: e.Custom, Temp: e.Temp}
}

type fileState struct {
	Version int     `cbor:"version"`
	Entries []Entry `cbor:"entries"`
}

// EntryID returns a stable identifier for spec: the first 16 bytes of
// the BLAKE3 digest of its three paths, hex encoded.
func EntryID(spec pathswap.Spec) string {
	hasher := blake3.New()
	for _, path := range []string{spec.Normal, spec.Custom, spec.Temp} {
		hasher.Write([]byte(path))
		hasher.Write([]byte{0})
	}
	sum := hasher.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// Journal is a swap journal stored at a fixed path. Safe for
// concurrent use within one process.
type Journal struct {
	mu   sync.Mutex
	path string
}

// Open returns the journal at path, creating the parent directory if
// needed. The journal file itself is only created on first Record.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating swap journal directory: %w", err)
	}
	return &Journal{path: path}, nil
}

// Path returns the journal file location.
func (j *Journal) Path() string { return j.path }

// Record adds spec to the journal, replacing any entry with the same
// ID.
func (j *Journal) Record(spec pathswap.Spec, launchID string, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.read()
	if err != nil {
		return err
	}
	entry := Entry{
		ID:         EntryID(spec),
		Normal:     spec.Normal,
		Custom:     spec.Custom,
		Temp:       spec.Temp,
		LaunchID:   launchID,
		RecordedAt: at.UTC(),
	}
	replaced := false
	for index := range state.Entries {
		if state.Entries[index].ID == entry.ID {
			state.Entries[index] = entry
			replaced = true
		}
	}
	if !replaced {
		state.Entries = append(state.Entries, entry)
	}
	return j.write(state)
}

// Remove drops the entry for spec. Removing an absent entry is not an
// error.
func (j *Journal) Remove(spec pathswap.Spec) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.read()
	if err != nil {
		return err
	}
	id := EntryID(spec)
	kept := state.Entries[:0]
	for _, entry := range state.Entries {
		if entry.ID != id {
			kept = append(kept, entry)
		}
	}
	if len(kept) == len(state.Entries) {
		return nil
	}
	state.Entries = kept
	return j.write(state)
}

// Entries returns the outstanding entries in recording order.
func (j *Journal) Entries() ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	state, err := j.read()
	if err != nil {
		return nil, err
	}
	return state.Entries, nil
}

func (j *Journal) read() (fileState, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileState{Version: formatVersion}, nil
		}
		return fileState{}, fmt.Errorf("reading swap journal: %w", err)
	}
	var state fileState
	if err := codec.Unmarshal(data, &state); err != nil {
		return fileState{}, fmt.Errorf("parsing swap journal %s: %w", j.path, err)
	}
	if state.Version != formatVersion {
		return fileState{}, fmt.Errorf("swap journal %s has format version %d, want %d", j.path, state.Version, formatVersion)
	}
	return state, nil
}

func (j *Journal) write(state fileState) error {
	if len(state.Entries) == 0 {
		if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing empty swap journal: %w", err)
		}
		return nil
	}

	state.Version = formatVersion
	data, err := codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding swap journal: %w", err)
	}

	temporaryPath := j.path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating temporary swap journal: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary swap journal: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary swap journal: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary swap journal: %w", err)
	}
	if err := os.Rename(temporaryPath, j.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming swap journal into place: %w", err)
	}

	if directory, err := os.Open(filepath.Dir(j.path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}
