package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mycoria/whitelist/m"
	"github.com/mycoria/whitelist/mojang"
)

// Resolver is a testing resolver that never touches the network.
// Known names resolve to their configured identifier, all other valid names
// resolve to a deterministic identifier derived from the name.
// Invalid names fail like they would with the real API.
type Resolver struct {
	Known   map[string]string
	Unknown map[string]struct{}

	lock  sync.Mutex
	calls []string
}

var _ mojang.Resolver = &Resolver{}

// NewResolver returns a new testing resolver.
// The given names will be reported as not found.
func NewResolver(unknown ...string) *Resolver {
	r := &Resolver{
		Known:   make(map[string]string),
		Unknown: make(map[string]struct{}, len(unknown)),
	}
	for _, name := range unknown {
		r.Unknown[name] = struct{}{}
	}
	return r
}

// Resolve implements mojang.Resolver.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.calls = append(r.calls, name)

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", mojang.ErrNetwork, err)
	}
	if !m.ValidUsername(name) {
		return "", fmt.Errorf("%w: %q", mojang.ErrInvalidName, name)
	}
	if _, ok := r.Unknown[name]; ok {
		return "", fmt.Errorf("%w: %s", mojang.ErrNotFound, name)
	}
	if id, ok := r.Known[name]; ok {
		return id, nil
	}
	return UUIDFor(name), nil
}

// Calls returns the names that were resolved, in order.
func (r *Resolver) Calls() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	return append([]string(nil), r.calls...)
}

// UUIDFor returns the deterministic identifier the testing resolver
// uses for unknown names.
func UUIDFor(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(name))).String()
}
