package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileFormat is an encoding of the config store on disk.
type fileFormat struct {
	name      string
	marshal   func(s Store) ([]byte, error)
	unmarshal func(data []byte, s *Store) error
}

var (
	jsonFormat = fileFormat{
		name:      "json",
		marshal:   marshalJSON,
		unmarshal: unmarshalJSON,
	}
	yamlFormat = fileFormat{
		name:      "yaml",
		marshal:   marshalYAML,
		unmarshal: unmarshalYAML,
	}
)

func marshalJSON(s Store) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func unmarshalJSON(data []byte, s *Store) error {
	return json.Unmarshal(data, s)
}

func marshalYAML(s Store) ([]byte, error) {
	return yaml.Marshal(s)
}

func unmarshalYAML(data []byte, s *Store) error {
	return yaml.Unmarshal(data, s)
}

// formatOf picks the file format by the file extension.
func formatOf(filename string) (fileFormat, error) {
	switch ext := filepath.Ext(filename); ext {
	case ".json":
		return jsonFormat, nil
	case ".yml", ".yaml":
		return yamlFormat, nil
	default:
		return fileFormat{}, fmt.Errorf("%w: unknown config file type %q", ErrInvalid, ext)
	}
}

// LoadConfig loads and parses the config from the given JSON or YAML file.
func LoadConfig(filename string) (*Config, error) {
	format, err := formatOf(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file at %s: %w", filename, err)
	}

	store := &Store{}
	if err := format.unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("%w: %s is not valid %s: %w", ErrInvalid, filename, format.name, err)
	}

	return store.Parse()
}

// SaveTo writes the config definition to the given JSON or YAML file.
// Existing files are overwritten.
func (c *Config) SaveTo(filename string) error {
	format, err := formatOf(filename)
	if err != nil {
		return err
	}

	data, err := format.marshal(c.Store)
	if err != nil {
		return fmt.Errorf("marshal config as %s: %w", format.name, err)
	}
	if err := os.WriteFile(filename, data, 0o0600); err != nil {
		return fmt.Errorf("write config to %s: %w", filename, err)
	}
	return nil
}
