package main

import (
	"fmt"

	"github.com/dgnsrekt/narrate/internal/cache"
	"github.com/dgnsrekt/narrate/tts"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var clearCache bool

var cacheCmd = &cobra.Command{
	Use:     "cache",
	Short:   "Show or clear the audio cache",
	Long:    paragraph(fmt.Sprintf("\n%s the size of the synthesized audio cache, or clear it with --clear.", keyword("Show"))),
	Example: paragraph("narrate cache\nnarrate cache --clear"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := tts.LoadConfigFromViper()
		if err != nil {
			return err
		}
		c, err := openCache(cfg.Cache)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		if clearCache {
			if err := c.Clear(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared", c.Dir())
			return nil
		}

		for _, s := range c.Stats() {
			if s.Level != cache.LevelDisk {
				continue
			}
			limit := "unlimited"
			if s.Capacity > 0 {
				limit = humanize.Bytes(uint64(s.Capacity)) //nolint:gosec
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s %s in %s of %s\n",
				keyword("Cache"), c.Dir(),
				faint("Using"), humanize.Bytes(uint64(s.Size)), humanize.Comma(s.Items)+" clips", limit) //nolint:gosec
		}
		return nil
	},
}

func init() {
	cacheCmd.Flags().BoolVar(&clearCache, "clear", false, "remove every cached clip")
}
