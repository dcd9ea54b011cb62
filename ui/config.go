package ui

// Config contains TUI-specific configuration.
type Config struct {
	HighlightColor string `env:"NARRATE_HIGHLIGHT_COLOR" envDefault:"226"`
	EnableMouse    bool   `env:"NARRATE_ENABLE_MOUSE"`
	Width          uint   `env:"NARRATE_WIDTH"`
	Debug          bool   `env:"NARRATE_DEBUG"`
	WatchFile      bool   `env:"NARRATE_WATCH" envDefault:"true"`

	// Markdown file being read
	Path string
}
