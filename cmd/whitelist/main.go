package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mycoria/whitelist/config"
)

var (
	rootCmd = &cobra.Command{
		Use:   "whitelist",
		Short: "Maintain the whitelist on multiple game servers",
		Long: `Maintain the whitelist on multiple game servers.

Use "rcon" to send the native whitelist commands to all configured servers,
or "manual" to edit a shared whitelist.json that is linked into every server.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}

	configPath = pflag.String("config_path", config.DefaultConfigPath, "set config file")
	logLevel   = pflag.String("log", "warn", "set log level")
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
