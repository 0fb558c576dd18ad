// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/cli"
	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/commands"
	"github.com/dfolaunch/dfolaunch/lib/process"
)

func main() {
	err := commands.Root().Execute(context.Background(), os.Args[1:])
	if err == nil {
		return
	}
	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(toolErr.Category.Code())
	}
	process.Fatal(err)
}
