// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/dfolaunch/dfolaunch/cmd/dfolaunch/cli"
	"github.com/dfolaunch/dfolaunch/lib/config"
	"github.com/dfolaunch/dfolaunch/lib/installdir"
)

// configParams are the flags shared by every command that reads the
// configuration file.
type configParams struct {
	ConfigPath string
	Verbose    bool
}

func (p *configParams) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.ConfigPath, "config", "", "configuration file (default $"+config.EnvironmentVariable+")")
	flagSet.BoolVarP(&p.Verbose, "verbose", "v", false, "log at debug level")
}

// load reads and validates the configuration, detecting the install
// directory when the file leaves it empty.
func (p *configParams) load(logger *slog.Logger) (*config.Config, error) {
	if p.Verbose {
		cli.LogLevel.Set(slog.LevelDebug)
	}

	var (
		cfg *config.Config
		err error
	)
	if p.ConfigPath != "" {
		cfg, err = config.LoadFile(p.ConfigPath)
	} else {
		if os.Getenv(config.EnvironmentVariable) == "" {
			return nil, cli.Validation("no configuration: pass --config or set %s", config.EnvironmentVariable)
		}
		cfg, err = config.Load()
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, cli.NotFound("configuration file: %w", err)
	}
	if err != nil {
		return nil, cli.Validation("%w", err)
	}

	if cfg.InstallDir == "" {
		directory, err := installdir.Detect(cfg.Game.HelperExecutable)
		if errors.Is(err, installdir.ErrNotFound) {
			return nil, cli.NotFound("%w: set install_dir in the configuration or %s", err, installdir.EnvironmentVariable)
		}
		if err != nil {
			return nil, cli.Internal("detecting install directory: %w", err)
		}
		logger.Info("detected install directory", "path", directory)
		cfg.SetInstallDir(directory)
	}

	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration:\n%w", err)
	}
	return cfg, nil
}
