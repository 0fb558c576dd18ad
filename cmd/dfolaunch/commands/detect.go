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

	"github.com/spf13/pflag"

	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/cli"
	"github.com/dfolaunch/dfolaunch/lib/installdir"
	"github.com/dfolaunch/dfolaunch/lib/launcher"
)

type detectParams struct {
	Helper     string
	Candidates bool
}

func detectCommand() *cli.Command {
	params := detectParams{Helper: launcher.DefaultConfig().HelperExecutable}
	return &cli.Command{
		Name:    "detect",
		Summary: "Find the game install directory",
		Description: `Print the game install directory: $DFO_DIR if set, otherwise the
first well-known location under $WINEPREFIX or ~/.wine that holds the
helper executable.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("detect", pflag.ContinueOnError)
			flagSet.StringVar(&params.Helper, "helper", params.Helper, "file that must exist in the install directory")
			flagSet.BoolVar(&params.Candidates, "candidates", false, "list every location searched")
			return flagSet
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return runDetect(installdir.New(params.Helper), params.Candidates, os.Stdout, logger)
		},
	}
}

func runDetect(detector *installdir.Detector, listCandidates bool, stdout io.Writer, logger *slog.Logger) error {
	if listCandidates {
		for _, candidate := range detector.Candidates() {
			fmt.Fprintln(stdout, candidate)
		}
		return nil
	}
	directory, err := detector.Detect()
	if errors.Is(err, installdir.ErrNotFound) {
		return cli.NotFound("%w", err)
	}
	if err != nil {
		return cli.Internal("%w", err)
	}
	logger.Debug("install directory found", "path", directory)
	fmt.Fprintln(stdout, directory)
	return nil
}
