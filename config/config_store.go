package config

import (
	"github.com/mitchellh/copystructure"
)

// Store holds all configuration in a storable format.
type Store struct {
	DestinationConfigs []DestinationConfig `json:"destinations"     yaml:"destinations"`
	Paths              []string            `json:"paths"            yaml:"paths"`
	Lookup             LookupConfig        `json:"lookup,omitempty" yaml:"lookup,omitempty"`
}

// DestinationConfig describes the remote console endpoint of a game server.
type DestinationConfig struct {
	Name     string `json:"name"              yaml:"name"`
	Host     string `json:"host"              yaml:"host"`
	Port     int    `json:"port,omitempty"    yaml:"port,omitempty"`
	Password string `json:"password"          yaml:"password"`

	// TLSMode selects the transport:
	// 0 plain TCP, 1 TLS, 2 TLS without certificate verification.
	TLSMode int `json:"tlsmode,omitempty" yaml:"tlsmode,omitempty"`
}

// LookupConfig configures the player lookup API.
type LookupConfig struct {
	URL     string `json:"url,omitempty"     yaml:"url,omitempty"`
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// redactedPassword replaces passwords in displayed configuration.
const redactedPassword = "********"

// Clone returns a full copy the store.
func (s Store) Clone() (Store, error) {
	copied, err := copystructure.Copy(s)
	if err != nil {
		return Store{}, err
	}
	return copied.(Store), nil //nolint:forcetypeassert
}

// Redacted returns a copy of the store with all passwords masked.
func (s Store) Redacted() (Store, error) {
	redacted, err := s.Clone()
	if err != nil {
		return Store{}, err
	}
	for i := range redacted.DestinationConfigs {
		if redacted.DestinationConfigs[i].Password != "" {
			redacted.DestinationConfigs[i].Password = redactedPassword
		}
	}
	return redacted, nil
}
