package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgnsrekt/narrate/internal/document"
	"github.com/dgnsrekt/narrate/tts"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

var segmentsCmd = &cobra.Command{
	Use:     "segments [FILE|DIR]",
	Short:   "Print the narration queue of a document",
	Long:    paragraph(fmt.Sprintf("\n%s the parts a document would be read in, with their kind and narration text, without playing any audio.", keyword("Print"))),
	Example: paragraph("narrate segments README.md\ncat notes.md | narrate segments -"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		arg := ""
		if len(args) > 0 {
			arg = args[0]
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
		return printSegments(os.Stdout, b, cfg, int(width)) //nolint:gosec
	},
}

// printSegments writes the queue that narrating src would play.
func printSegments(w io.Writer, src []byte, cfg tts.Config, width int) error {
	page, err := document.FromMarkdown(src)
	if err != nil {
		return err
	}

	page.Lock()
	units := newSegmenter(cfg).Segment(page.ContentRoot())
	queue := tts.BuildQueue(units, page)
	page.Unlock()

	if len(queue) == 0 {
		return tts.ErrNoContent
	}

	const gutter = 18
	textWidth := max(20, width-gutter)
	pad := strings.Repeat(" ", gutter)
	for _, item := range queue {
		lines := strings.Split(wordwrap.String(item.Unit.Text, textWidth), "\n")
		head := fmt.Sprintf("%4d  %-12s", item.Index, item.Unit.Kind)
		if _, err := fmt.Fprintf(w, "%s%s\n", faint(head), lines[0]); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
		for _, l := range lines[1:] {
			if _, err := fmt.Fprintf(w, "%s%s\n", pad, l); err != nil {
				return fmt.Errorf("unable to write to writer: %w", err)
			}
		}
	}
	return nil
}
