package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmcdole/leaf/internal/adapter"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently read books and where you left off",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := adapter.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		positions, err := openStore(settings.Get())
		if err != nil {
			return err
		}
		defer positions.Close()

		out := cmd.OutOrStdout()
		if historyClear {
			if err := positions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(out, "History cleared")
			return nil
		}

		recent, err := positions.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(recent) == 0 {
			fmt.Fprintln(out, "No books read yet")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LAST READ\tPAGE\tBOOK")
		for _, pos := range recent {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", pos.UpdatedAt.Local().Format("2006-01-02 15:04"), pos.Index+1, pos.Book)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of books to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "forget all positions and bookmarks")
}
