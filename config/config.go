package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/idna"
)

// ErrInvalid is returned when the configuration is not valid.
var ErrInvalid = errors.New("invalid config")

// Config holds initialized configuration.
type Config struct {
	Store

	Destinations  []Destination
	LookupURL     string
	LookupTimeout time.Duration
}

// Destination is a validated remote console endpoint.
type Destination struct {
	Name     string
	Host     string
	Port     int
	Password string
	TLSMode  TLSMode
}

// TLSMode defines how the connection to a destination is secured.
type TLSMode int

// TLS Modes.
const (
	TLSDisabled TLSMode = iota
	TLSEnabled
	TLSInsecure
)

// Address returns the host:port address of the destination.
func (d Destination) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// Parse parses a config definition and return an initialized config.
func (s Store) Parse() (*Config, error) {
	c := &Config{
		Store:         s,
		Destinations:  make([]Destination, 0, len(s.DestinationConfigs)),
		LookupURL:     DefaultLookupURL,
		LookupTimeout: DefaultLookupTimeout,
	}

	// Parse destinations.
	seen := make(map[string]struct{}, len(s.DestinationConfigs))
	for i, dc := range s.DestinationConfigs {
		dest, err := dc.parse()
		if err != nil {
			return nil, fmt.Errorf("%w: destination #%d: %w", ErrInvalid, i+1, err)
		}
		if _, ok := seen[dest.Name]; ok {
			return nil, fmt.Errorf("%w: destination #%d: duplicate name %q", ErrInvalid, i+1, dest.Name)
		}
		seen[dest.Name] = struct{}{}
		c.Destinations = append(c.Destinations, dest)
	}

	// Check paths.
	for i, path := range s.Paths {
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("%w: paths.#%d is empty", ErrInvalid, i+1)
		}
	}

	// Parse lookup settings.
	if s.Lookup.URL != "" {
		if !strings.HasPrefix(s.Lookup.URL, "https://") && !strings.HasPrefix(s.Lookup.URL, "http://") {
			return nil, fmt.Errorf("%w: lookup.url %q must be an http(s) URL", ErrInvalid, s.Lookup.URL)
		}
		c.LookupURL = s.Lookup.URL
	}
	if s.Lookup.Timeout != "" {
		timeout, err := time.ParseDuration(s.Lookup.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: lookup.timeout: %w", ErrInvalid, err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("%w: lookup.timeout must be positive", ErrInvalid)
		}
		c.LookupTimeout = timeout
	}

	return c, nil
}

func (dc DestinationConfig) parse() (Destination, error) {
	if dc.Name == "" {
		return Destination{}, errors.New("name is required")
	}

	host, err := CleanHost(dc.Host)
	if err != nil {
		return Destination{}, fmt.Errorf("%s: %w", dc.Name, err)
	}

	port := dc.Port
	switch {
	case port == 0:
		port = DefaultRconPort
	case port < 0 || port > 65535:
		return Destination{}, fmt.Errorf("%s: port %d is out of range", dc.Name, port)
	}

	mode := TLSMode(dc.TLSMode)
	switch mode {
	case TLSDisabled, TLSEnabled, TLSInsecure:
	default:
		return Destination{}, fmt.Errorf("%s: tlsmode %d is invalid - use 0 (plain), 1 (tls) or 2 (tls, no verify)", dc.Name, dc.TLSMode)
	}

	return Destination{
		Name:     dc.Name,
		Host:     host,
		Port:     port,
		Password: dc.Password,
		TLSMode:  mode,
	}, nil
}

// CleanHost cleans and checks the given host name or IP address.
// Internationalized domain names are converted to their ASCII form.
func CleanHost(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", errors.New("host is required")
	}

	// Accept IP addresses as is.
	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		return ip.String(), nil
	}

	cleaned, err := idna.Lookup.ToASCII(strings.TrimSuffix(host, "."))
	if err != nil {
		return "", fmt.Errorf("host %q is invalid: %w", host, err)
	}
	return cleaned, nil
}
