package storage

import (
	"context"
	"log/slog"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/mycoria/whitelist/mojang"
)

// Whitelist is an ordered mapping of player names to identifiers that is
// mirrored to a JSON file. Every mutating batch is written to the file once.
type Whitelist struct {
	filename string
	resolver mojang.Resolver

	// names maps name (string) to uuid (string) in insertion order.
	names *linkedhashmap.Map
}

// NewWhitelist returns an empty whitelist backed by the given file.
// Nothing is read or written.
func NewWhitelist(filename string, resolver mojang.Resolver) *Whitelist {
	return &Whitelist{
		filename: filename,
		resolver: resolver,
		names:    linkedhashmap.New(),
	}
}

// Filename returns the path of the backing file.
func (wl *Whitelist) Filename() string {
	return wl.filename
}

// Len returns the amount of whitelisted players.
func (wl *Whitelist) Len() int {
	return wl.names.Size()
}

// Get returns the identifier of the given player.
func (wl *Whitelist) Get(name string) (uuid string, ok bool) {
	v, ok := wl.names.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true //nolint:forcetypeassert
}

// Entries returns all entries in order.
func (wl *Whitelist) Entries() []Entry {
	entries := make([]Entry, 0, wl.names.Size())
	it := wl.names.Iterator()
	for it.Next() {
		entries = append(entries, Entry{
			UUID: it.Value().(string), //nolint:forcetypeassert
			Name: it.Key().(string),   //nolint:forcetypeassert
		})
	}
	return entries
}

// List returns the current count and the ordered names.
func (wl *Whitelist) List() Listing {
	names := make([]string, 0, wl.names.Size())
	for _, key := range wl.names.Keys() {
		names = append(names, key.(string)) //nolint:forcetypeassert
	}
	return Listing{
		Count: len(names),
		Names: names,
	}
}

// Add resolves and adds the given names. Names that cannot be resolved are
// skipped and reported, the rest of the batch continues.
// The whitelist is saved once after the whole batch.
func (wl *Whitelist) Add(ctx context.Context, names []string) (AddReport, error) {
	var report AddReport

	for _, name := range uniqueNames(names) {
		uuid, err := wl.resolver.Resolve(ctx, name)
		if err != nil {
			slog.Info("skipping player", "name", name, "err", err)
			report.Skipped = append(report.Skipped, Skip{Name: name, Err: err})
			continue
		}
		report.Added = append(report.Added, Entry{UUID: uuid, Name: name})
	}

	for _, entry := range report.Added {
		wl.names.Put(entry.Name, entry.UUID)
		slog.Debug("added player", "name", entry.Name, "uuid", entry.UUID)
	}

	return report, wl.Save()
}

// Remove removes the given names. Names not on the whitelist are reported
// as missing. The whitelist is saved once after the whole batch.
func (wl *Whitelist) Remove(names []string) (RemoveReport, error) {
	var report RemoveReport

	for _, name := range uniqueNames(names) {
		if _, ok := wl.names.Get(name); !ok {
			report.Missing = append(report.Missing, name)
			continue
		}
		wl.names.Remove(name)
		report.Removed = append(report.Removed, name)
		slog.Debug("removed player", "name", name)
	}

	return report, wl.Save()
}

// set replaces all entries. Later duplicates of a name win.
func (wl *Whitelist) set(entries []Entry) {
	wl.names.Clear()
	for _, entry := range entries {
		wl.names.Put(entry.Name, entry.UUID)
	}
}
