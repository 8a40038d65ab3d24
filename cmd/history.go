package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/mixtape/internal/app"
	"github.com/llehouerou/mixtape/internal/errmsg"
)

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent prompts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			out := cmd.OutOrStdout()
			if historyClear {
				if err := a.State.ClearHistory(); err != nil {
					return userError(a, errmsg.OpHistoryClear, err)
				}
				fmt.Fprintln(out, "History cleared")
				return nil
			}
			entries, err := a.History(historyLimit)
			if err != nil {
				return userError(a, errmsg.OpHistoryLoad, err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No prompts yet")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "%-16s %s", humanize.Time(e.CreatedAt), e.Prompt)
				if e.Analysis.Mood != "" {
					fmt.Fprintf(out, "  (%s)", e.Analysis.Mood)
				}
				fmt.Fprintln(out)
			}
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of prompts to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete the prompt history")
	rootCmd.AddCommand(historyCmd)
}
