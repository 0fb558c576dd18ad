// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/cli"
	"github.com/dfolaunch/dfolaunch/lib/version"
)

// Root builds and returns the complete command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "dfolaunch",
		Description: `dfolaunch: log in to Dungeon Fighter Online and supervise the game.

Authenticates through a credential helper, starts the game with the
launch token, swaps in custom game files while it runs and puts the
originals back when the window closes.`,
		Subcommands: []*cli.Command{
			launchCommand(),
			repairCommand(),
			historyCommand(),
			detectCommand(),
			sealPasswordCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Fprintf(os.Stdout, "dfolaunch %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Launch with the account and swaps from the config file",
				Command:     "dfolaunch launch --config ~/.config/dfolaunch.yaml",
			},
			{
				Description: "Put original game files back after a crash",
				Command:     "dfolaunch repair",
			},
			{
				Description: "Show the last ten launches",
				Command:     "dfolaunch history --limit 10",
			},
		},
	}
}
