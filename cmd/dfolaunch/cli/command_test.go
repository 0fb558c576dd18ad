// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func noop(context.Context, []string, *slog.Logger) error { return nil }

func TestExecuteDispatchesNestedSubcommands(t *testing.T) {
	var called string
	var received []string

	root := &Command{
		Name: "dfolaunch",
		Subcommands: []*Command{
			{Name: "version", Run: noop},
			{
				Name: "history",
				Subcommands: []*Command{
					{
						Name: "failures",
						Run: func(_ context.Context, args []string, _ *slog.Logger) error {
							called = "history failures"
							received = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"history", "failures", "launch-1"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "history failures" {
		t.Errorf("dispatched to %q", called)
	}
	if len(received) != 1 || received[0] != "launch-1" {
		t.Errorf("args = %v, want [launch-1]", received)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var configPath, username string
	var positional []string

	command := &Command{
		Name: "launch",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("launch", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file")
			flagSet.StringVarP(&username, "username", "u", "", "account")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			positional = args
			return nil
		},
	}

	err := command.Execute(context.Background(), []string{"--config", "/etc/dfolaunch.yaml", "-u", "neople", "extra"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if configPath != "/etc/dfolaunch.yaml" || username != "neople" {
		t.Errorf("flags = %q, %q", configPath, username)
	}
	if len(positional) != 1 || positional[0] != "extra" {
		t.Errorf("args = %v", positional)
	}
}

func TestExecuteUnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "launch",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("launch", pflag.ContinueOnError)
			flagSet.String("password-file", "", "")
			flagSet.Bool("no-history", false, "")
			return flagSet
		},
		Run: noop,
	}

	err := command.Execute(context.Background(), []string{"--pasword-file", "/p"})
	if err == nil {
		t.Fatal("Execute accepted an unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --password-file") {
		t.Errorf("error = %q, want suggestion", err)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Errorf("error category = %v, want validation", err)
	}

	err = command.Execute(context.Background(), []string{"--zzzzzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("distant flag error = %v", err)
	}
}

func TestExecuteUnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "dfolaunch",
		Subcommands: []*Command{
			{Name: "launch", Run: noop},
			{Name: "repair", Run: noop},
			{Name: "history", Run: noop},
		},
	}

	err := root.Execute(context.Background(), []string{"repiar"})
	if err == nil || !strings.Contains(err.Error(), `did you mean "repair"`) {
		t.Errorf("error = %v, want repair suggestion", err)
	}

	err = root.Execute(context.Background(), []string{"zzzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion", err)
	}
}

func TestExecuteRequiresSubcommand(t *testing.T) {
	root := &Command{
		Name:        "dfolaunch",
		Subcommands: []*Command{{Name: "launch", Run: noop}},
	}
	if err := root.Execute(context.Background(), nil); err == nil {
		t.Fatal("Execute with no subcommand succeeded")
	}
}

func TestExecuteRunError(t *testing.T) {
	want := errors.New("install directory not found")
	command := &Command{
		Name: "detect",
		Run: func(context.Context, []string, *slog.Logger) error {
			return want
		},
	}
	if err := command.Execute(context.Background(), nil); !errors.Is(err, want) {
		t.Errorf("Execute = %v, want %v", err, want)
	}
}

func TestPrintHelp(t *testing.T) {
	root := &Command{
		Name:        "dfolaunch",
		Description: "Launch and supervise the game.",
		Subcommands: []*Command{
			{Name: "launch", Summary: "Log in and start the game"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{Description: "Launch with the configured account", Command: "dfolaunch launch"},
		},
	}

	var output bytes.Buffer
	root.PrintHelp(&output)
	help := output.String()
	for _, want := range []string{
		"Launch and supervise the game.",
		"dfolaunch <command> [flags]",
		"launch",
		"Print version information",
		"# Launch with the configured account",
		"Run 'dfolaunch <command> --help'",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestCategoryCodes(t *testing.T) {
	tests := []struct {
		err  *ToolError
		code int
	}{
		{Validation("bad"), 2},
		{NotFound("missing"), 3},
		{Conflict("busy"), 4},
		{Internal("broken"), 1},
	}
	for _, test := range tests {
		if got := test.err.Category.Code(); got != test.code {
			t.Errorf("%s code = %d, want %d", test.err.Category, got, test.code)
		}
	}
}
