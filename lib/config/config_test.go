// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dfolaunch/dfolaunch/lib/launcher"
	"github.com/dfolaunch/dfolaunch/lib/pathswap"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultValidates(t *testing.T) {
	t.Setenv("HOME", "/home/neople")
	config := Default()
	config.expandVariables()
	if err := config.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if config.Game.HelperExecutable != "DFO.exe" {
		t.Errorf("helper_executable = %q, want DFO.exe", config.Game.HelperExecutable)
	}
}

func TestLoadRequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")
	_, err := Load()
	if err == nil {
		t.Fatal("Load() succeeded without DFOLAUNCH_CONFIG")
	}
	if !strings.HasPrefix(err.Error(), "DFOLAUNCH_CONFIG environment variable not set") {
		t.Errorf("error = %q", err)
	}
}

func TestLoadFileYAML(t *testing.T) {
	t.Setenv("HOME", "/home/neople")
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("DFO_DIR", "")
	t.Setenv("REGION", "")
	path := writeConfig(t, "dfolaunch.yaml", `
install_dir: ${HOME}/.wine/drive_c/Neople/DFO
username: neople
auth:
  command: [dfo-login, --region, "${REGION:-kr}"]
  login_timeout: 45s
game:
  helper_wrapper: [wine]
window:
  mode: windowed
  width: 1024
  close_popup: true
swaps:
  - normal: SoundPacks
    custom: SoundPacksCustom
    temp: SoundPacksOriginal
  - normal: ${DFO_DIR}/ImagePacks2
    custom: ImagePacks2Custom
    temp: ImagePacks2Original
polling:
  window_gone: 2s
`)
	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	installDir := "/home/neople/.wine/drive_c/Neople/DFO"
	if config.InstallDir != installDir {
		t.Errorf("install_dir = %q, want %q", config.InstallDir, installDir)
	}
	if got := strings.Join(config.Auth.Command, " "); got != "dfo-login --region kr" {
		t.Errorf("auth.command = %q", got)
	}
	if config.Swaps[1].Normal != installDir+"/ImagePacks2" {
		t.Errorf("swaps[1].normal = %q", config.Swaps[1].Normal)
	}
	if config.Paths.Journal != "/home/neople/.local/state/dfolaunch/swaps.cbor" {
		t.Errorf("paths.journal = %q", config.Paths.Journal)
	}

	launch, err := config.LaunchConfig()
	if err != nil {
		t.Fatalf("LaunchConfig: %v", err)
	}
	if launch.Username != "neople" || launch.InstallDir != installDir {
		t.Errorf("launch config identity = %q in %q", launch.Username, launch.InstallDir)
	}
	if launch.LoginTimeout != 45*time.Second || launch.WindowGoneInterval != 2*time.Second {
		t.Errorf("durations = %s, %s", launch.LoginTimeout, launch.WindowGoneInterval)
	}
	if launch.WindowAppearInterval != 500*time.Millisecond {
		t.Errorf("default window_appear = %s, want 500ms", launch.WindowAppearInterval)
	}
	if launch.WindowMode != launcher.WindowModeWindowed || !launch.ClosePopup {
		t.Errorf("window settings = %s, close_popup %v", launch.WindowMode, launch.ClosePopup)
	}
	if width, height, ok := launch.WindowSize(); !ok || width != 1024 || height != 768 {
		t.Errorf("WindowSize = %d, %d, %v", width, height, ok)
	}
	want := pathswap.Spec{Normal: "SoundPacks", Custom: "SoundPacksCustom", Temp: "SoundPacksOriginal"}
	if len(launch.Swaps) != 2 || launch.Swaps[0] != want {
		t.Errorf("swaps = %+v", launch.Swaps)
	}
}

func TestLoadFileJSONC(t *testing.T) {
	t.Setenv("HOME", "/home/neople")
	path := writeConfig(t, "dfolaunch.jsonc", `{
  // Steam Deck install
  "install_dir": "/games/dfo",
  "window": {"mode": "fullscreen", "height": 600,},
  "swaps": [
    {"normal": "SoundPacks", "custom": "SoundPacksCustom", "temp": "SoundPacksOriginal"},
  ],
}`)
	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	launch, err := config.LaunchConfig()
	if err != nil {
		t.Fatalf("LaunchConfig: %v", err)
	}
	if launch.InstallDir != "/games/dfo" || launch.WindowMode != launcher.WindowModeFullscreen {
		t.Errorf("launch = %q, %s", launch.InstallDir, launch.WindowMode)
	}
	if width, _, _ := launch.WindowSize(); width != 800 {
		t.Errorf("derived width = %d, want 800", width)
	}
}

func TestSetInstallDirResolvesSwaps(t *testing.T) {
	t.Setenv("DFO_DIR", "")
	path := writeConfig(t, "dfolaunch.yaml", `
swaps:
  - normal: ${DFO_DIR}/SoundPacks
    custom: ${DFO_DIR}/SoundPacksCustom
    temp: ${DFO_DIR}/SoundPacksOriginal
`)
	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if config.Swaps[0].Normal != "${DFO_DIR}/SoundPacks" {
		t.Fatalf("unresolved swap expanded early: %q", config.Swaps[0].Normal)
	}
	config.SetInstallDir("/detected/DFO")
	if config.Swaps[0].Normal != "/detected/DFO/SoundPacks" {
		t.Errorf("swaps[0].normal = %q after SetInstallDir", config.Swaps[0].Normal)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	config := Default()
	config.expandVariables()
	config.InstallDir = "relative/dfo"
	config.Polling.WindowAppear = "soon"
	config.Polling.ProcessGone = "0s"
	config.Window.Mode = "borderless"
	config.Credentials.PasswordFile = "/a"
	config.Credentials.SealedPasswordFile = "/b"
	config.Swaps = []SwapConfig{{Normal: "SoundPacks"}}

	err := config.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	for _, want := range []string{
		"install_dir",
		"polling.window_appear",
		"polling.process_gone",
		"window.mode",
		"identity_file",
		"at most one",
		"swaps[0]",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error does not mention %q:\n%v", want, err)
		}
	}
}

func TestParseError(t *testing.T) {
	path := writeConfig(t, "dfolaunch.yaml", "swaps: {not: [a list\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile accepted malformed YAML")
	}
}
