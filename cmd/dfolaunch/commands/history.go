// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/cli"
	"github.com/dfolaunch/dfolaunch/lib/clock"
	"github.com/dfolaunch/dfolaunch/lib/history"
)

type historyParams struct {
	configParams
	Limit int
	JSON  bool
}

type launchRecord struct {
	ID            string     `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	FurthestState string     `json:"furthest_state"`
	Outcome       string     `json:"outcome"`
	FailureCount  int        `json:"failure_count"`
}

type failureRecord struct {
	OccurredAt time.Time `json:"occurred_at"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject,omitempty"`
	Message    string    `json:"message"`
}

func historyCommand() *cli.Command {
	var params historyParams
	return &cli.Command{
		Name:    "history",
		Summary: "Show recent launches, or the failures of one launch",
		Usage:   "dfolaunch history [launch-id] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("history", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.IntVarP(&params.Limit, "limit", "n", 20, "number of launches to show")
			flagSet.BoolVar(&params.JSON, "json", false, "output as JSON")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "List the last five launches", Command: "dfolaunch history -n 5"},
			{Description: "Show what went wrong in one launch", Command: "dfolaunch history 0b6c61f2-8d0e-4a5e-9a43-5bb1e4f0d7a2"},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("expected at most one launch ID, got %d arguments", len(args))
			}
			return runHistory(ctx, &params, args, os.Stdout, logger)
		},
	}
}

func runHistory(ctx context.Context, params *historyParams, args []string, stdout io.Writer, logger *slog.Logger) error {
	if params.Limit <= 0 {
		return cli.Validation("--limit must be positive, got %d", params.Limit)
	}
	cfg, err := params.load(logger)
	if err != nil {
		return err
	}
	if cfg.Paths.History == "" {
		return cli.Validation("launch history is disabled: paths.history is empty")
	}
	if _, err := os.Stat(cfg.Paths.History); errors.Is(err, os.ErrNotExist) {
		return cli.NotFound("no launch history at %s", cfg.Paths.History)
	}

	store, err := history.Open(ctx, cfg.Paths.History, clock.Real(), logger)
	if err != nil {
		return cli.Internal("opening launch history: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		return showFailures(ctx, store, args[0], params.JSON, stdout)
	}

	launches, err := store.Recent(ctx, params.Limit)
	if err != nil {
		return cli.Internal("%w", err)
	}
	records := make([]launchRecord, 0, len(launches))
	for _, launch := range launches {
		record := launchRecord{
			ID:            launch.ID,
			StartedAt:     launch.StartedAt,
			FurthestState: launch.FurthestState,
			Outcome:       launch.Outcome,
			FailureCount:  launch.FailureCount,
		}
		if !launch.EndedAt.IsZero() {
			ended := launch.EndedAt
			record.EndedAt = &ended
		}
		records = append(records, record)
	}
	if params.JSON {
		return cli.WriteJSON(stdout, records)
	}
	printLaunches(stdout, records)
	return nil
}

func showFailures(ctx context.Context, store *history.Store, launchID string, asJSON bool, stdout io.Writer) error {
	failures, err := store.Failures(ctx, launchID)
	if err != nil {
		return cli.Internal("%w", err)
	}
	records := make([]failureRecord, 0, len(failures))
	for _, failure := range failures {
		records = append(records, failureRecord{
			OccurredAt: failure.OccurredAt,
			Kind:       failure.Kind,
			Subject:    failure.Subject,
			Message:    failure.Message,
		})
	}
	if asJSON {
		return cli.WriteJSON(stdout, records)
	}
	if len(records) == 0 {
		fmt.Fprintf(stdout, "No failures recorded for %s.\n", launchID)
		return nil
	}
	for _, record := range records {
		fmt.Fprintf(stdout, "%s  %s", record.OccurredAt.Local().Format(time.DateTime), record.Kind)
		if record.Subject != "" {
			fmt.Fprintf(stdout, "  %s", record.Subject)
		}
		fmt.Fprintf(stdout, "\n    %s\n", record.Message)
	}
	return nil
}

func printLaunches(w io.Writer, records []launchRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No launches recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tDURATION\tOUTCOME\tREACHED\tFAILURES\tID")
	for _, record := range records {
		duration := "-"
		if record.EndedAt != nil {
			duration = record.EndedAt.Sub(record.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			record.StartedAt.Local().Format(time.DateTime), duration,
			record.Outcome, record.FurthestState, record.FailureCount, record.ID)
	}
	tw.Flush()
}
