package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mycoria/whitelist/config"
	"github.com/mycoria/whitelist/rcon"
)

func init() {
	rootCmd.AddCommand(rconCmd)
	rconCmd.AddCommand(
		newRconCmd(rcon.ActionAdd, "add <names...>", "Add players to the whitelist", cobra.MinimumNArgs(1)),
		newRconCmd(rcon.ActionRemove, "remove <names...>", "Remove players from the whitelist", cobra.MinimumNArgs(1)),
		newRconCmd(rcon.ActionList, "list", "Print whitelisted players", cobra.NoArgs),
		newRconCmd(rcon.ActionOn, "on", "Turn the whitelist on", cobra.NoArgs),
		newRconCmd(rcon.ActionOff, "off", "Turn the whitelist off", cobra.NoArgs),
		newRconCmd(rcon.ActionReload, "reload", "Reload the whitelist from disk", cobra.NoArgs),
	)
}

var rconCmd = &cobra.Command{
	Use:   "rcon",
	Short: "Send whitelist commands to all configured servers",
}

func newRconCmd(action rcon.Action, use, short string, posArgs cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  posArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}

			d := rcon.NewDispatcher(config.DefaultCommandTimeout)
			sendToDestinations(cmd.Context(), cmd.OutOrStdout(), d, c.Destinations, rcon.WhitelistCommand(action, args...))
			return nil
		},
	}
}

// sendToDestinations sends the command to every destination in order and
// prints each response. Failures are printed, not returned.
func sendToDestinations(ctx context.Context, w io.Writer, d *rcon.Dispatcher, dests []config.Destination, command string) {
	for _, result := range d.Broadcast(ctx, dests, command) {
		fmt.Fprintf(w, "Command to %s\n%s\n", result.Destination, result.Output) // CLI output.
	}
}
