// Package storage holds the whitelist store and its JSON file format.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Errors.
var (
	ErrFileFormat = errors.New("malformed whitelist file")
	ErrIO         = errors.New("whitelist file io")
)

// Entry is a single whitelisted player, as stored in the whitelist file.
type Entry struct {
	UUID string `json:"uuid" yaml:"uuid"`
	Name string `json:"name" yaml:"name"`
}

// Skip describes a name that could not be added.
type Skip struct {
	Name string
	Err  error
}

// AddReport holds the per-name outcome of an add batch.
type AddReport struct {
	Added   []Entry
	Skipped []Skip
}

// RemoveReport holds the per-name outcome of a remove batch.
type RemoveReport struct {
	Removed []string
	Missing []string
}

// Listing is a display snapshot of the whitelist.
type Listing struct {
	Count int
	Names []string
}

// String formats the listing for the CLI.
func (l Listing) String() string {
	return fmt.Sprintf("There are %d whitelisted players: %s", l.Count, strings.Join(l.Names, ", "))
}

// uniqueNames returns the given names without duplicates, keeping the order.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}
