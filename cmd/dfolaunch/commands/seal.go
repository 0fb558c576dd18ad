// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/cli"
	"github.com/dfolaunch/dfolaunch/lib/sealed"
)

type sealParams struct {
	password   cli.PasswordSource
	Recipients []string
	Output     string
}

func sealPasswordCommand() *cli.Command {
	var params sealParams
	return &cli.Command{
		Name:    "seal-password",
		Summary: "Encrypt the account password for --sealed-password-file",
		Description: `Encrypt the account password to one or more age recipients and write
the armored result. The password is prompted for unless --password-file
names an existing plain text file to convert.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("seal-password", pflag.ContinueOnError)
			flagSet.StringVar(&params.password.File, "password-file", "", "plain text password to encrypt instead of prompting")
			flagSet.StringSliceVarP(&params.Recipients, "recipient", "r", nil, "age recipient (age1...), repeatable")
			flagSet.StringVarP(&params.Output, "output", "o", "", "file to write (required)")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Command: "dfolaunch seal-password -r age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p -o ~/.config/dfolaunch/password.age",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return runSealPassword(&params, logger)
		},
	}
}

func runSealPassword(params *sealParams, logger *slog.Logger) error {
	if len(params.Recipients) == 0 {
		return cli.Validation("at least one --recipient is required")
	}
	if params.Output == "" {
		return cli.Validation("--output is required")
	}

	password, err := params.password.Read("Password to seal: ", os.Stderr)
	if err != nil {
		return err
	}
	defer password.Close()

	ciphertext, err := sealed.Seal(password.Bytes(), params.Recipients)
	if err != nil {
		return cli.Validation("%w", err)
	}
	if err := os.WriteFile(params.Output, ciphertext, 0o600); err != nil {
		return cli.Internal("writing sealed password: %w", err)
	}
	logger.Info("sealed password written", "path", params.Output, "recipients", len(params.Recipients))
	return nil
}
