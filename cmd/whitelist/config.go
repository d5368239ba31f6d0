package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/mycoria/whitelist/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(generateCmd, showCmd)

	configCmd.PersistentFlags().BoolVar(&outputYAML, "yaml", false, "output yaml instead of json")
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the example configuration to this .json, .yml or .yaml file")
}

var (
	outputYAML bool
	outputFile string

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Work with the configuration file",
	}
	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Print or write an example configuration",
		Args:  cobra.NoArgs,
		RunE:  generate,
	}
	showCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the loaded configuration without passwords",
		Args:  cobra.NoArgs,
		RunE:  show,
	}
)

func generate(cmd *cobra.Command, args []string) error {
	if outputFile == "" {
		return printStore(cmd, makeDefaultConfig())
	}

	if _, err := os.Stat(outputFile); err == nil {
		return fmt.Errorf("config file %s already exists", outputFile)
	}
	c, err := makeDefaultConfig().Parse()
	if err != nil {
		return fmt.Errorf("invalid example config: %w", err)
	}
	if err := c.SaveTo(outputFile); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Example config written to %s\n", outputFile) // CLI output.
	return nil
}

func show(cmd *cobra.Command, args []string) error {
	c, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	redacted, err := c.Redacted()
	if err != nil {
		return fmt.Errorf("failed to copy config: %w", err)
	}
	return printStore(cmd, redacted)
}

func printStore(cmd *cobra.Command, s config.Store) error {
	var (
		data []byte
		err  error
	)
	if outputYAML {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data)) // CLI output.
	return nil
}

func makeDefaultConfig() config.Store {
	return config.Store{
		DestinationConfigs: []config.DestinationConfig{{
			Name:     "lobby",
			Host:     "localhost",
			Port:     config.DefaultRconPort,
			Password: "change-me",
		}},
		Paths: []string{config.DefaultWhitelistPath},
	}
}
