// Package mojang resolves player names to their unique identifiers using the
// public profile lookup API.
package mojang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mycoria/whitelist/m"
)

// Errors.
var (
	ErrInvalidName = errors.New("invalid player name")
	ErrNotFound    = errors.New("player not found")
	ErrNetwork     = errors.New("lookup failed")
)

// DefaultBaseURL is the default base URL of the profile lookup API.
const DefaultBaseURL = "https://api.mojang.com"

// DefaultTimeout is the default timeout of a single lookup.
const DefaultTimeout = 10 * time.Second

// maxResponseSize limits how much of a response body is read.
const maxResponseSize = 64 << 10

// Resolver resolves a player name to a canonical identifier.
type Resolver interface {
	Resolve(ctx context.Context, name string) (uuid string, err error)
}

// Client is a Resolver using the profile lookup API.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

var _ Resolver = &Client{}

// Profile is the response of a profile lookup.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewClient returns a new lookup client.
// An empty baseURL or zero timeout selects the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Resolve looks up the given player name and returns its canonical identifier.
func (c *Client) Resolve(ctx context.Context, name string) (string, error) {
	profile, err := c.Lookup(ctx, name)
	if err != nil {
		return "", err
	}

	id, err := m.CanonicalUUID(profile.ID)
	if err != nil {
		return "", fmt.Errorf("profile of %s: %w", name, err)
	}
	return id, nil
}

// Lookup fetches the profile of the given player name.
func (c *Client) Lookup(ctx context.Context, name string) (*Profile, error) {
	if !m.ValidUsername(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqURL := c.baseURL + "/users/profiles/minecraft/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// Continue below.
	case http.StatusNoContent, http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	default:
		return nil, fmt.Errorf("%w: unexpected status %s", ErrNetwork, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}
	profile := &Profile{}
	if err := json.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %w", ErrNetwork, err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return profile, nil
}
