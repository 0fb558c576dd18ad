// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/cli"
	"github.com/dfolaunch/dfolaunch/lib/launcher"
	"github.com/dfolaunch/dfolaunch/lib/swapjournal"
)

type repairParams struct {
	configParams
	JSON bool
}

// repairResult is the --json form of one launcher.RepairOutcome.
type repairResult struct {
	Normal    string `json:"normal"`
	Custom    string `json:"custom"`
	Temp      string `json:"temp"`
	Journaled bool   `json:"journaled"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

func repairCommand() *cli.Command {
	var params repairParams
	return &cli.Command{
		Name:    "repair",
		Summary: "Restore game files left swapped by an interrupted launch",
		Description: `Check every configured swap and every swap the journal lists as not
yet switched back. Half-done swaps are put back so the original files
are at their normal paths and the custom files at their custom paths.

Exits 1 when any swap could not be repaired.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("repair", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.BoolVar(&params.JSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return runRepair(ctx, &params, os.Stdout, logger)
		},
	}
}

func runRepair(ctx context.Context, params *repairParams, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := params.load(logger)
	if err != nil {
		return err
	}
	launchConfig, err := cfg.LaunchConfig()
	if err != nil {
		return cli.Validation("invalid configuration:\n%w", err)
	}
	journal, err := swapjournal.Open(cfg.Paths.Journal)
	if err != nil {
		return cli.Internal("opening swap journal: %w", err)
	}

	game := launcher.New(launcher.Options{Logger: logger, Journal: journal})
	defer game.Close()
	game.SetConfig(launchConfig)

	outcomes, err := game.Repair(ctx)
	if err != nil {
		return cli.Internal("repair: %w", err)
	}

	results := make([]repairResult, 0, len(outcomes))
	failed := false
	for _, outcome := range outcomes {
		result := repairResult{
			Normal:    outcome.Spec.Normal,
			Custom:    outcome.Spec.Custom,
			Temp:      outcome.Spec.Temp,
			Journaled: outcome.Journaled,
			Status:    repairStatus(outcome),
		}
		if outcome.Err != nil {
			result.Error = outcome.Err.Error()
			failed = true
		}
		results = append(results, result)
	}

	if params.JSON {
		if err := cli.WriteJSON(stdout, results); err != nil {
			return cli.Internal("writing output: %w", err)
		}
	} else {
		printRepairResults(stdout, results)
	}
	if failed {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func repairStatus(outcome launcher.RepairOutcome) string {
	switch {
	case outcome.Err != nil:
		return "failed"
	case outcome.Repaired:
		return "repaired"
	default:
		return "ok"
	}
}

func printRepairResults(w io.Writer, results []repairResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No swaps configured or journaled.")
		return
	}
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tNORMAL\tJOURNALED")
	for _, result := range results {
		journaled := "no"
		if result.Journaled {
			journaled = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", result.Status, result.Normal, journaled)
	}
	tw.Flush()
	for _, result := range results {
		if result.Error != "" {
			fmt.Fprintf(w, "\n%s:\n  %s\n", result.Normal, result.Error)
		}
	}
}
