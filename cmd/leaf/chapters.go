package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmcdole/leaf/internal/adapter"
	"github.com/mmcdole/leaf/internal/reader"
	"github.com/mmcdole/leaf/internal/tui"
)

var (
	chaptersWidth  int
	chaptersHeight int
)

var chaptersCmd = &cobra.Command{
	Use:   "chapters FILE",
	Short: "List a book's chapters and the pages they start on",
	Long: `Paginate FILE the way the reader would and print its chapters.

Page numbers depend on the page size, so they are computed for the current
terminal unless --width and --height are given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := adapter.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		raw, err := adapter.NewFileLoader(adapter.NullLogger()).Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		width, height := terminalSize()
		if chaptersWidth > 0 {
			width = chaptersWidth
		}
		if chaptersHeight > 0 {
			height = chaptersHeight
		}
		bp := reader.NewBreakpoints(settings.Get().Reader.NarrowWidth)
		bp.Update(width)
		geom := reader.PageGeometry(width, height-tui.ChromeHeight, bp.Narrow())

		res, err := adapter.TextPaginator{}.Paginate(cmd.Context(), adapter.TextSanitizer{}.Sanitize(raw), geom)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(res.Chapters) == 0 {
			fmt.Fprintf(out, "No chapters (%d pages)\n", res.PageCount)
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tCHAPTER\tPAGE")
		for i, c := range res.Chapters {
			fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, c.Title, c.Page+1)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d chapters, %d pages of %dx%d\n", len(res.Chapters), res.PageCount, geom.PageWidth, geom.PageHeight)
		return nil
	},
}

func init() {
	chaptersCmd.Flags().IntVar(&chaptersWidth, "width", 0, "terminal width to paginate for")
	chaptersCmd.Flags().IntVar(&chaptersHeight, "height", 0, "terminal height to paginate for")
}
