// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/dfolaunch/dfolaunch/lib/launcher"
	"github.com/dfolaunch/dfolaunch/lib/pathswap"
)

// EnvironmentVariable names the configuration file when --config is
// not given.
const EnvironmentVariable = "DFOLAUNCH_CONFIG"

// Config is the on-disk configuration.
type Config struct {
	// InstallDir is the game directory. Empty means auto-detect.
	InstallDir string `yaml:"install_dir"`

	// Username is the default account. The --username flag wins.
	Username string `yaml:"username"`

	Credentials CredentialsConfig `yaml:"credentials"`
	Auth        AuthConfig        `yaml:"auth"`
	Game        GameConfig        `yaml:"game"`
	Window      WindowConfig      `yaml:"window"`
	Swaps       []SwapConfig      `yaml:"swaps"`
	Polling     PollingConfig     `yaml:"polling"`
	Paths       PathsConfig       `yaml:"paths"`
}

// CredentialsConfig locates the account password. At most one source
// may be set; with none the CLI prompts on the terminal.
type CredentialsConfig struct {
	// PasswordFile holds the password in plain text.
	PasswordFile string `yaml:"password_file"`

	// SealedPasswordFile holds the password encrypted with age to
	// the key in IdentityFile.
	SealedPasswordFile string `yaml:"sealed_password_file"`
	IdentityFile       string `yaml:"identity_file"`
}

// AuthConfig configures the credential helper that logs in.
type AuthConfig struct {
	// Command is run with the username appended as the last argument,
	// the password on stdin, and must print the launch token.
	Command []string `yaml:"command"`

	// LoginTimeout bounds the helper. "0" disables the bound.
	LoginTimeout string `yaml:"login_timeout"`
}

// GameConfig describes the game executables.
type GameConfig struct {
	// HelperExecutable is started with the launch token.
	HelperExecutable string `yaml:"helper_executable"`

	// HelperWrapper is prepended to the helper command, typically
	// [wine].
	HelperWrapper []string `yaml:"helper_wrapper"`

	ProcessName string `yaml:"process_name"`
	WindowClass string `yaml:"window_class"`
}

// WindowConfig controls window mode and size.
type WindowConfig struct {
	// Mode is windowed, fullscreen or unspecified.
	Mode string `yaml:"mode"`

	// Marker is the directory whose presence selects windowed mode.
	Marker string `yaml:"marker"`

	// Width and Height are optional; one derives the other at 4:3.
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`

	ClosePopup bool `yaml:"close_popup"`
}

// SwapConfig is one file or directory substitution. Relative paths are
// relative to the install directory.
type SwapConfig struct {
	Normal string `yaml:"normal"`
	Custom string `yaml:"custom"`
	Temp   string `yaml:"temp"`
}

// PollingConfig sets the monitor's polling intervals.
type PollingConfig struct {
	WindowAppear   string `yaml:"window_appear"`
	WindowGone     string `yaml:"window_gone"`
	ProcessGone    string `yaml:"process_gone"`
	CancelExitWait string `yaml:"cancel_exit_wait"`
}

// PathsConfig locates dfolaunch's own state.
type PathsConfig struct {
	// State is the directory for the journal and history database.
	State string `yaml:"state"`

	// Journal is the swap journal file.
	Journal string `yaml:"journal"`

	// History is the SQLite launch history. Empty disables history.
	History string `yaml:"history"`
}

// Default returns the configuration used as the base for LoadFile.
func Default() *Config {
	defaults := launcher.DefaultConfig()

	stateDir := filepath.Join("${HOME}", ".local", "state", "dfolaunch")
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		stateDir = filepath.Join(xdgState, "dfolaunch")
	}

	return &Config{
		Auth: AuthConfig{
			LoginTimeout: defaults.LoginTimeout.String(),
		},
		Game: GameConfig{
			HelperExecutable: defaults.HelperExecutable,
			ProcessName:      defaults.GameProcessName,
			WindowClass:      defaults.WindowClass,
		},
		Window: WindowConfig{
			Mode:   launcher.WindowModeUnspecified.String(),
			Marker: defaults.WindowedMarker,
		},
		Polling: PollingConfig{
			WindowAppear:   defaults.WindowAppearInterval.String(),
			WindowGone:     defaults.WindowGoneInterval.String(),
			ProcessGone:    defaults.ProcessGoneInterval.String(),
			CancelExitWait: defaults.CancelExitWait.String(),
		},
		Paths: PathsConfig{
			State:   stateDir,
			Journal: filepath.Join("${DFOLAUNCH_STATE}", "swaps.cbor"),
			History: filepath.Join("${DFOLAUNCH_STATE}", "history.db"),
		},
	}
}

// Load loads the file named by DFOLAUNCH_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your dfolaunch.yaml, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads path over Default and expands variables.
func LoadFile(path string) (*Config, error) {
	config := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := config.parse(path, data); err != nil {
		return nil, err
	}
	config.expandVariables()
	return config, nil
}

func (c *Config) parse(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// YAML is a superset of JSON, so the stripped document goes
		// through the same decoder and struct tags.
		data = jsonc.ToJSON(data)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path and
// command fields. The state directory is expanded first so the journal
// and history paths can refer to it.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":    os.Getenv("HOME"),
		"DFO_DIR": "",
	}
	c.InstallDir = expandVars(c.InstallDir, vars)
	vars["DFO_DIR"] = c.InstallDir

	c.Paths.State = expandVars(c.Paths.State, vars)
	vars["DFOLAUNCH_STATE"] = c.Paths.State

	c.Paths.Journal = expandVars(c.Paths.Journal, vars)
	c.Paths.History = expandVars(c.Paths.History, vars)
	c.Credentials.PasswordFile = expandVars(c.Credentials.PasswordFile, vars)
	c.Credentials.SealedPasswordFile = expandVars(c.Credentials.SealedPasswordFile, vars)
	c.Credentials.IdentityFile = expandVars(c.Credentials.IdentityFile, vars)
	c.Game.HelperExecutable = expandVars(c.Game.HelperExecutable, vars)
	for index := range c.Auth.Command {
		c.Auth.Command[index] = expandVars(c.Auth.Command[index], vars)
	}
	for index := range c.Game.HelperWrapper {
		c.Game.HelperWrapper[index] = expandVars(c.Game.HelperWrapper[index], vars)
	}
	for index := range c.Swaps {
		swap := &c.Swaps[index]
		swap.Normal = expandVars(swap.Normal, vars)
		swap.Custom = expandVars(swap.Custom, vars)
		swap.Temp = expandVars(swap.Temp, vars)
	}
}

// SetInstallDir sets the install directory after loading (for example
// from detection) and re-expands ${DFO_DIR} references in swap paths.
func (c *Config) SetInstallDir(path string) {
	c.InstallDir = path
	vars := map[string]string{"DFO_DIR": path}
	for index := range c.Swaps {
		swap := &c.Swaps[index]
		swap.Normal = expandVars(swap.Normal, vars)
		swap.Custom = expandVars(swap.Custom, vars)
		swap.Temp = expandVars(swap.Temp, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces each reference with its value from vars, then
// the environment, then the default. Unset names with no default are
// left in place so a later SetInstallDir can still resolve them.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name := parts[1]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		if strings.Contains(match, ":-") {
			return parts[2]
		}
		if _, known := vars[name]; known {
			return match
		}
		return ""
	})
}

// Validate checks every field that LaunchConfig converts, reporting
// all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.Contains(c.InstallDir, "${") {
		errs = append(errs, fmt.Errorf("install_dir %q has an unresolved variable", c.InstallDir))
	}
	if c.InstallDir != "" && !filepath.IsAbs(c.InstallDir) {
		errs = append(errs, fmt.Errorf("install_dir %q must be absolute", c.InstallDir))
	}

	sources := 0
	if c.Credentials.PasswordFile != "" {
		sources++
	}
	if c.Credentials.SealedPasswordFile != "" {
		sources++
		if c.Credentials.IdentityFile == "" {
			errs = append(errs, errors.New("credentials.identity_file is required with credentials.sealed_password_file"))
		}
	}
	if sources > 1 {
		errs = append(errs, errors.New("set at most one of credentials.password_file and credentials.sealed_password_file"))
	}

	durations := []struct {
		name, value string
		allowZero   bool
	}{
		{"auth.login_timeout", c.Auth.LoginTimeout, true},
		{"polling.window_appear", c.Polling.WindowAppear, false},
		{"polling.window_gone", c.Polling.WindowGone, false},
		{"polling.process_gone", c.Polling.ProcessGone, false},
		{"polling.cancel_exit_wait", c.Polling.CancelExitWait, true},
	}
	for _, field := range durations {
		duration, err := time.ParseDuration(field.value)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", field.name, err))
		case duration < 0 || (duration == 0 && !field.allowZero):
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", field.name, field.value))
		}
	}

	if _, err := launcher.ParseWindowMode(c.Window.Mode); err != nil {
		errs = append(errs, fmt.Errorf("window.mode: %w", err))
	}
	if c.Window.Width != nil && *c.Window.Width <= 0 {
		errs = append(errs, fmt.Errorf("window.width must be positive, got %d", *c.Window.Width))
	}
	if c.Window.Height != nil && *c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window.height must be positive, got %d", *c.Window.Height))
	}

	for index, swap := range c.Swaps {
		if swap.Normal == "" || swap.Custom == "" || swap.Temp == "" {
			errs = append(errs, fmt.Errorf("swaps[%d]: normal, custom and temp are all required", index))
		}
	}

	if c.Paths.Journal == "" {
		errs = append(errs, errors.New("paths.journal is required"))
	}

	return errors.Join(errs...)
}

// LaunchConfig converts c into the launcher's runtime configuration.
// Credentials are left empty for the caller to fill in.
func (c *Config) LaunchConfig() (launcher.Config, error) {
	if err := c.Validate(); err != nil {
		return launcher.Config{}, err
	}

	config := launcher.DefaultConfig()
	config.Username = c.Username
	config.InstallDir = c.InstallDir
	config.HelperExecutable = c.Game.HelperExecutable
	config.GameProcessName = c.Game.ProcessName
	config.WindowClass = c.Game.WindowClass
	config.WindowMode, _ = launcher.ParseWindowMode(c.Window.Mode)
	config.WindowedMarker = c.Window.Marker
	config.WindowWidth = c.Window.Width
	config.WindowHeight = c.Window.Height
	config.ClosePopup = c.Window.ClosePopup

	// Validate has already parsed every duration.
	config.LoginTimeout, _ = time.ParseDuration(c.Auth.LoginTimeout)
	config.WindowAppearInterval, _ = time.ParseDuration(c.Polling.WindowAppear)
	config.WindowGoneInterval, _ = time.ParseDuration(c.Polling.WindowGone)
	config.ProcessGoneInterval, _ = time.ParseDuration(c.Polling.ProcessGone)
	config.CancelExitWait, _ = time.ParseDuration(c.Polling.CancelExitWait)

	for _, swap := range c.Swaps {
		config.Swaps = append(config.Swaps, pathswap.Spec{
			Normal: swap.Normal,
			Custom: swap.Custom,
			Temp:   swap.Temp,
		})
	}
	return config.Clone(), nil
}
