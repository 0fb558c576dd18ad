// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the dfolaunch configuration file.
//
// Configuration comes from exactly one file, named by the --config
// flag or the DFOLAUNCH_CONFIG environment variable. There is no
// search path and no implicit merging of several files, so what a
// launch does is always traceable to one document. The launcher
// itself never writes this file.
//
// The file is YAML. Files ending in .json or .jsonc are accepted too;
// comments and trailing commas are stripped before parsing.
//
// String values that name paths or commands may reference variables
// as ${NAME} or ${NAME:-default}. ${DFO_DIR} is the configured install
// directory, ${DFOLAUNCH_STATE} the state directory and ${HOME} the
// user's home; any other name is looked up in the environment.
//
// Durations are Go duration strings ("500ms", "30s"). [Config.LaunchConfig]
// converts the file into the launcher's runtime configuration.
package config
