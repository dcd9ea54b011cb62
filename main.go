// Package main provides the entry point for the narrate CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/narrate/internal/document"
	"github.com/dgnsrekt/narrate/tts"
	"github.com/dgnsrekt/narrate/tts/highlight"
	"github.com/dgnsrekt/narrate/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	readmeNames = []string{"README.md", "README", "Readme.md", "Readme", "readme.md", "readme"}
	configFile  string
	width       uint
	mouse       bool
	debug       bool
	logging     bool
	logCloser   = func() error { return nil }

	rootCmd = &cobra.Command{
		Use:   "narrate [FILE|DIR]",
		Short: "Read markdown aloud in the terminal",
		Long: paragraph(
			fmt.Sprintf("\nRead markdown %s, highlighting each part as it is spoken.", keyword("aloud")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// source provides a readable markdown source.
type source struct {
	reader io.ReadCloser
	path   string
}

// sourceFromArg opens the markdown named by arg: a file, a directory holding
// a README, or - for stdin.
func sourceFromArg(arg string) (*source, error) {
	// from stdin
	if arg == "-" {
		return &source{reader: os.Stdin}, nil
	}

	// a directory:
	if len(arg) == 0 {
		// use the current working dir if no argument was supplied
		arg = "."
	}
	st, err := os.Stat(arg)
	if err == nil && st.IsDir() { //nolint:nestif
		var src *source
		_ = filepath.Walk(arg, func(path string, _ os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			for _, v := range readmeNames {
				if strings.EqualFold(filepath.Base(path), v) {
					r, err := os.Open(path)
					if err != nil {
						continue
					}

					u, _ := filepath.Abs(path)
					src = &source{r, u}

					// abort filepath.Walk
					return errors.New("source found")
				}
			}
			return nil
		})

		if src != nil {
			return src, nil
		}

		return nil, errors.New("missing markdown source")
	}

	r, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	u, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	return &source{r, u}, nil
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	debug = viper.GetBool("debug")

	if debug && !logging {
		closer, err := setupLog(true)
		if err != nil {
			return err
		}
		logCloser, logging = closer, true
	}

	if _, err := tts.LoadConfigFromViper(); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(_ *cobra.Command, args []string) error {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	if yes, err := stdinIsPipe(); err != nil {
		return err
	} else if yes && arg == "" {
		arg = "-"
	}

	src, err := sourceFromArg(arg)
	if err != nil {
		return err
	}
	b, err := io.ReadAll(src.reader)
	_ = src.reader.Close()
	if err != nil {
		return fmt.Errorf("unable to read from reader: %w", err)
	}

	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return err
	}

	// Without a terminal there is nothing to highlight, so print the queue.
	if !term.IsTerminal(int(os.Stdout.Fd())) || src.path == "" {
		return printSegments(os.Stdout, b, cfg, int(width)) //nolint:gosec
	}
	return runTUI(src.path, b, cfg)
}

func runTUI(path string, content []byte, narration tts.Config) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.Path = path
	if cfg.Width == 0 {
		cfg.Width = width
	}
	cfg.EnableMouse = cfg.EnableMouse || mouse

	page, err := document.FromMarkdown(content)
	if err != nil {
		return err
	}

	stack, err := newNarrator(narration)
	if err != nil {
		return err
	}
	defer stack.Close()

	controller := tts.NewController(page, page, stack.narrator, newSegmenter(narration), highlight.New(page), controllerConfig(narration))
	deps := ui.Deps{
		Page:       page,
		Controller: controller,
		Controls:   ui.NewControls(narration.Voice, narration.Rate, narration.Pitch),
		Cache:      stack.cache,
	}

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, deps).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		fmt.Println("error parsing config:", err)
		os.Exit(1)
	}
	closer, err := setupLog(cfg.Debug)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	logCloser, logging = closer, cfg.Debug
	if err := rootCmd.Execute(); err != nil {
		_ = logCloser()
		os.Exit(1)
	}
	_ = logCloser()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().Bool("debug", false, "write a debug log to the cache directory")
	rootCmd.PersistentFlags().String("engine", "", "narration engine (mock, piper)")
	rootCmd.PersistentFlags().String("voice", "", "voice id or name")
	rootCmd.PersistentFlags().Float64("rate", 0, "speech rate")
	rootCmd.PersistentFlags().String("phrases", "", "spoken labels (zh, en)")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("narration.engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("narration.voice", rootCmd.PersistentFlags().Lookup("voice"))
	_ = viper.BindPFlag("narration.rate", rootCmd.PersistentFlags().Lookup("rate"))
	_ = viper.BindPFlag("narration.phrases", rootCmd.PersistentFlags().Lookup("phrases"))

	viper.SetDefault("width", 0)
	tts.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(configCmd, manCmd, cacheCmd, segmentsCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "narrate")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "narrate")}, dirs...)
	}

	if c := os.Getenv("NARRATE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("narrate")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("narrate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "narrate.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
