package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/mycoria/whitelist/m"
	"github.com/mycoria/whitelist/mojang"
)

// Open loads the whitelist file at the given location. If the file does not
// exist yet, it is created with an empty whitelist.
func Open(filename string, resolver mojang.Resolver) (*Whitelist, error) {
	wl := NewWhitelist(filename, resolver)

	_, err := os.Stat(filename)
	switch {
	case err == nil:
		if err := wl.Load(); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
		if err := wl.Save(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: stat %q: %w", ErrIO, filename, err)
	}

	return wl, nil
}

// Load replaces the in-memory whitelist with the content of the file.
func (wl *Whitelist) Load() error {
	data, err := os.ReadFile(wl.filename)
	if err != nil {
		return fmt.Errorf("%w: read %q: %w", ErrIO, wl.filename, err)
	}

	entries, err := ParseEntries(data)
	if err != nil {
		return fmt.Errorf("load %q: %w", wl.filename, err)
	}
	wl.set(entries)
	return nil
}

// Save writes the whitelist to the file, replacing its content.
// The file is written in place so that symlinked files stay shared.
func (wl *Whitelist) Save() error {
	data, err := json.MarshalIndent(wl.Entries(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal whitelist: %w", err)
	}
	data = append(data, '\n')

	err = os.WriteFile(wl.filename, data, 0o0644) //nolint:gosec // no secrets
	if err != nil {
		return fmt.Errorf("%w: write %q: %w", ErrIO, wl.filename, err)
	}
	return nil
}

// ParseEntries parses the whitelist file format.
// Compact identifiers are converted to the canonical form.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileFormat, err)
	}
	if entries == nil {
		// "null" is not a list of records.
		return nil, fmt.Errorf("%w: expected a list of records", ErrFileFormat)
	}

	for i := range entries {
		entry := &entries[i]
		switch {
		case entry.Name == "":
			return nil, fmt.Errorf("%w: record #%d has no name", ErrFileFormat, i+1)
		case len(entry.UUID) == m.CompactUUIDLength:
			canonical, err := m.CanonicalUUID(entry.UUID)
			if err != nil {
				return nil, fmt.Errorf("%w: record #%d (%s): %w", ErrFileFormat, i+1, entry.Name, err)
			}
			entry.UUID = canonical
		default:
			if _, err := uuid.Parse(entry.UUID); err != nil || len(entry.UUID) != 36 {
				return nil, fmt.Errorf("%w: record #%d (%s) has an invalid uuid %q", ErrFileFormat, i+1, entry.Name, entry.UUID)
			}
		}
	}

	return entries, nil
}
