package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/dgnsrekt/narrate/tts"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultConfig = `# word-wrap at width (0 uses the terminal width)
width: 0
# mouse support
mouse: false

narration:
  # engine: mock or piper
  engine: "mock"
  # language used when the voice has none
  lang: "zh-CN"
  # voice id or name; empty picks the preferred voice
  voice: ""
  rate: 0.8
  pitch: 1.0
  # rate multiplier for emphasized parts
  emphasis_rate_factor: 1.2
  # delays after a unit, after a code block, and before skipping a failed unit
  normal_pause: "200ms"
  code_pause: "500ms"
  error_delay: "300ms"
  # paragraphs longer than this are read sentence by sentence
  sentence_threshold: 50
  # spoken labels: zh or en
  phrases: "zh"
  volume: 1.0

  piper:
    binary: "piper"
    # model: "~/.local/share/piper/zh_CN-huayan-medium.onnx"
    # model_dir: "~/.local/share/piper"
    timeout: "30s"
    requests_per_second: 4

  mock:
    words_per_minute: 180

  cache:
    # dir: "~/.cache/narrate/audio"
    memory_ttl: "10m"
    max_disk_mb: 100
    compression_level: 3
`

var printDefaults bool

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the narrate config file",
	Long:    paragraph(fmt.Sprintf("\n%s the narrate config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("narrate config\nnarrate config --config path/to/config.yml\nnarrate config --defaults"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if printDefaults {
			return writeDefaults(cmd.OutOrStdout())
		}

		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("Narrate", configFile)
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

func init() {
	configCmd.Flags().BoolVar(&printDefaults, "defaults", false, "print the default narration settings")
}

// writeDefaults prints the built-in narration settings as YAML.
func writeDefaults(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]tts.Config{"narration": tts.DefaultConfig()}); err != nil {
		return fmt.Errorf("unable to encode defaults: %w", err)
	}
	return enc.Close()
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
