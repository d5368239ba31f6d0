package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigJSON = `{
  "destinations": [
    {"name": "lobby", "host": "localhost", "port": 25575, "password": "secret", "tlsmode": 0},
    {"name": "survival", "host": "mc.example.com", "password": "hunter2", "tlsmode": 2}
  ],
  "paths": ["/srv/lobby/whitelist.json", "/srv/survival/whitelist.json"]
}`

const testConfigYAML = `
destinations:
  - name: lobby
    host: localhost
    port: 25575
    password: secret
  - name: survival
    host: mc.example.com
    password: hunter2
    tlsmode: 2
paths:
  - /srv/lobby/whitelist.json
  - /srv/survival/whitelist.json
lookup:
  url: http://localhost:8080
  timeout: 2s
`

func writeT(t *testing.T, name, content string) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o0600))
	return filename
}

func TestLoadConfigJSON(t *testing.T) {
	t.Parallel()

	c, err := LoadConfig(writeT(t, "whitelist_config.json", testConfigJSON))
	require.NoError(t, err)

	require.Len(t, c.Destinations, 2)
	assert.Equal(t, Destination{
		Name:     "lobby",
		Host:     "localhost",
		Port:     25575,
		Password: "secret",
		TLSMode:  TLSDisabled,
	}, c.Destinations[0])
	assert.Equal(t, DefaultRconPort, c.Destinations[1].Port, "port should default")
	assert.Equal(t, TLSInsecure, c.Destinations[1].TLSMode)
	assert.Equal(t, "mc.example.com:25575", c.Destinations[1].Address())
	assert.Equal(t, []string{"/srv/lobby/whitelist.json", "/srv/survival/whitelist.json"}, c.Paths)
	assert.Equal(t, DefaultLookupURL, c.LookupURL)
	assert.Equal(t, DefaultLookupTimeout, c.LookupTimeout)
}

func TestLoadConfigYAML(t *testing.T) {
	t.Parallel()

	c, err := LoadConfig(writeT(t, "whitelist_config.yaml", testConfigYAML))
	require.NoError(t, err)

	require.Len(t, c.Destinations, 2)
	assert.Equal(t, "survival", c.Destinations[1].Name)
	assert.Equal(t, "http://localhost:8080", c.LookupURL)
	assert.Equal(t, 2*time.Second, c.LookupTimeout)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadConfig(writeT(t, "config.toml", ""))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = LoadConfig(writeT(t, "config.json", `{"destinations": "nope"}`))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = LoadConfig(writeT(t, "config.json", `{"destinations": [`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseValidation(t *testing.T) {
	t.Parallel()

	for name, s := range map[string]Store{
		"missing name": {DestinationConfigs: []DestinationConfig{{Host: "localhost"}}},
		"missing host": {DestinationConfigs: []DestinationConfig{{Name: "a"}}},
		"bad port":     {DestinationConfigs: []DestinationConfig{{Name: "a", Host: "localhost", Port: 70000}}},
		"bad tlsmode":  {DestinationConfigs: []DestinationConfig{{Name: "a", Host: "localhost", TLSMode: 3}}},
		"duplicate": {DestinationConfigs: []DestinationConfig{
			{Name: "a", Host: "localhost"},
			{Name: "a", Host: "127.0.0.1"},
		}},
		"empty path":       {Paths: []string{" "}},
		"bad lookup url":   {Lookup: LookupConfig{URL: "ftp://example.com"}},
		"bad timeout":      {Lookup: LookupConfig{Timeout: "soon"}},
		"negative timeout": {Lookup: LookupConfig{Timeout: "-1s"}},
	} {
		_, err := s.Parse()
		assert.ErrorIs(t, err, ErrInvalid, name)
	}

	// Empty config is valid.
	c, err := Store{}.Parse()
	require.NoError(t, err)
	assert.Empty(t, c.Destinations)
}

func TestCleanHost(t *testing.T) {
	t.Parallel()

	host, err := CleanHost(" Example.COM. ")
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)

	host, err = CleanHost("bücher.example")
	require.NoError(t, err)
	assert.Equal(t, "xn--bcher-kva.example", host)

	host, err = CleanHost("[::1]")
	require.NoError(t, err)
	assert.Equal(t, "::1", host)

	_, err = CleanHost("")
	assert.Error(t, err)
}

func TestRedacted(t *testing.T) {
	t.Parallel()

	c, err := LoadConfig(writeT(t, "whitelist_config.json", testConfigJSON))
	require.NoError(t, err)

	redacted, err := c.Store.Redacted()
	require.NoError(t, err)
	for _, dc := range redacted.DestinationConfigs {
		assert.Equal(t, redactedPassword, dc.Password)
	}

	// The loaded config is untouched.
	assert.Equal(t, "secret", c.DestinationConfigs[0].Password)
	assert.Equal(t, "secret", c.Destinations[0].Password)
}

func TestSaveTo(t *testing.T) {
	t.Parallel()

	c, err := LoadConfig(writeT(t, "whitelist_config.json", testConfigJSON))
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"saved.json", "saved.yaml"} {
		filename := filepath.Join(dir, name)
		require.NoError(t, c.SaveTo(filename))

		loaded, err := LoadConfig(filename)
		require.NoError(t, err)
		assert.Equal(t, c.Destinations, loaded.Destinations, name)
		assert.Equal(t, c.Paths, loaded.Paths, name)
	}

	assert.Error(t, c.SaveTo(filepath.Join(dir, "saved.txt")))
}
