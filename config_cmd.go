package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# enable debug logging
debug: false

tts:
  # voice used when a request names none; a language code works too
  default_voice: "en"
  # vocoder quality for neural voices: high, medium or low
  quality: "high"
  # vocoder denoiser strength, 0 disables
  denoiser_strength: 0.005
  # prosodic variability
  noise_scale: 0.667
  # speaking rate, lower is faster
  length_scale: 1.0
  # bound for a whole synthesis request, e.g. "30s"; empty disables
  timeout: ""
  # YAML file of extra language aliases, merged over the built-in table
  alias_file: ""

  cache:
    enabled: true
    # empty picks the user cache directory
    dir: ""
    max_size: 268435456
    compression_level: 3

  # set required: true on an engine to fail startup when it cannot run
  espeak:
    enabled: true
    required: false
    timeout: "30s"
  flite:
    enabled: true
    voice_dir: "/usr/share/flite"
    timeout: "30s"
  festival:
    enabled: true
    timeout: "30s"
  nanotts:
    enabled: true
    timeout: "30s"

  # MaryTTS needs an installation directory with voice jars
  marytts:
    enabled: true
    dir: ""
    timeout: "60s"

  # glow-speak needs a directory of ONNX voice and vocoder models
  glow_speak:
    enabled: true
    models_dir: ""

  # forward one engine name to another speech server
  remote:
    enabled: false
    name: "larynx"
    url: ""
    tls_verify: true
    timeout: "60s"
    requests_per_minute: 0
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the voxgate config file",
	Long:    "\nEdit the voxgate config file. We'll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.",
	Example: "voxgate config\nvoxgate config --config path/to/config.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("voxgate", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
