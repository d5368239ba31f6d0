package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mycoria/whitelist/config"
	"github.com/mycoria/whitelist/mojang"
	"github.com/mycoria/whitelist/storage"
)

func init() {
	rootCmd.AddCommand(manualCmd)
	manualCmd.AddCommand(manualAddCmd, manualRemoveCmd, manualListCmd)

	manualCmd.PersistentFlags().StringVar(&whitelistPath, "whitelist_path", config.DefaultWhitelistPath, "set whitelist file")
	manualCmd.PersistentFlags().BoolVar(&allPaths, "all_paths", false, "apply to every whitelist listed in the config paths")
}

var (
	whitelistPath string
	allPaths      bool

	manualCmd = &cobra.Command{
		Use:   "manual",
		Short: "Edit a local whitelist.json",
	}
	manualAddCmd = &cobra.Command{
		Use:   "add <names...>",
		Short: "Add players to the whitelist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachWhitelist(cmd, func(wl *storage.Whitelist) error {
				return addToWhitelist(cmd.Context(), cmd.OutOrStdout(), wl, args)
			})
		},
	}
	manualRemoveCmd = &cobra.Command{
		Use:   "remove <names...>",
		Short: "Remove players from the whitelist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachWhitelist(cmd, func(wl *storage.Whitelist) error {
				return removeFromWhitelist(cmd.OutOrStdout(), wl, args)
			})
		},
	}
	manualListCmd = &cobra.Command{
		Use:   "list",
		Short: "Print whitelisted players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachWhitelist(cmd, func(wl *storage.Whitelist) error {
				listWhitelist(cmd.OutOrStdout(), wl)
				return nil
			})
		},
	}
)

// loadConfig loads the configuration file. If the config is not required,
// a missing default config file is treated as an empty config.
func loadConfig(cmd *cobra.Command, required bool) (*config.Config, error) {
	c, err := config.LoadConfig(*configPath)
	switch {
	case err == nil:
		return c, nil
	case !required && errors.Is(err, os.ErrNotExist) && !flagChanged(cmd, "config_path"):
		return config.Store{}.Parse()
	default:
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Changed
}

// forEachWhitelist opens the selected whitelist files and calls fn on each.
func forEachWhitelist(cmd *cobra.Command, fn func(wl *storage.Whitelist) error) error {
	c, err := loadConfig(cmd, allPaths)
	if err != nil {
		return err
	}

	paths := []string{whitelistPath}
	if allPaths {
		if len(c.Paths) == 0 {
			return errors.New("no paths configured")
		}
		paths = c.Paths
	}

	resolver := mojang.NewClient(c.LookupURL, c.LookupTimeout)
	for _, path := range paths {
		wl, err := storage.Open(path, resolver)
		if err != nil {
			return fmt.Errorf("failed to open whitelist: %w", err)
		}
		if len(paths) > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "Whitelist %s\n", wl.Filename()) // CLI output.
		}
		if err := fn(wl); err != nil {
			return err
		}
	}
	return nil
}

func addToWhitelist(ctx context.Context, w io.Writer, wl *storage.Whitelist, names []string) error {
	report, err := wl.Add(ctx, names)
	for _, entry := range report.Added {
		fmt.Fprintf(w, "Added %s to whitelist\n", entry.Name) // CLI output.
	}
	for _, skip := range report.Skipped {
		fmt.Fprintf(w, "Skipped %s: %s\n", skip.Name, skipReason(skip.Err)) // CLI output.
	}
	if err != nil {
		return fmt.Errorf("failed to save whitelist: %w", err)
	}
	return nil
}

func removeFromWhitelist(w io.Writer, wl *storage.Whitelist, names []string) error {
	report, err := wl.Remove(names)
	for _, name := range report.Removed {
		fmt.Fprintf(w, "Removed %s from whitelist\n", name) // CLI output.
	}
	if err != nil {
		return fmt.Errorf("failed to save whitelist: %w", err)
	}
	return nil
}

func listWhitelist(w io.Writer, wl *storage.Whitelist) {
	fmt.Fprintln(w, wl.List().String()) // CLI output.
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, mojang.ErrInvalidName):
		return "invalid player name"
	case errors.Is(err, mojang.ErrNotFound):
		return "player does not exist"
	default:
		return err.Error()
	}
}
