package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/mixtape/internal/app"
	"github.com/llehouerou/mixtape/internal/errmsg"
	"github.com/llehouerou/mixtape/internal/mixtape"
)

var generateAdd bool

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Find songs for a prompt",
	Example: `  mixtape generate "rainy sunday morning, soft jazz"
  mixtape generate --add "late night drive"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if generateAdd {
				if err := requireLogin(ctx, a); err != nil {
					return err
				}
			}
			gen, err := a.Generate.FromPrompt(ctx, strings.Join(args, " "))
			if err != nil {
				return userError(a, errmsg.OpGenerateMixtape, err)
			}
			out := cmd.OutOrStdout()
			printGeneration(out, gen)
			if !generateAdd {
				return nil
			}

			added := 0
			for _, t := range gen.Candidates {
				err := a.Queue.Add(ctx, t)
				switch {
				case err == nil:
					added++
				case errors.Is(err, mixtape.ErrDuplicateTrack):
				default:
					return userError(a, errmsg.OpQueueAdd, err)
				}
			}
			fmt.Fprintf(out, "\n%d songs added to your mixtape\n", added)
			return nil
		})
	},
}

func printGeneration(w io.Writer, gen *mixtape.Generation) {
	var chips []string
	for _, s := range []string{gen.Analysis.Mood, gen.Analysis.Genre, gen.Analysis.Language} {
		if s != "" {
			chips = append(chips, s)
		}
	}
	if len(chips) > 0 {
		fmt.Fprintln(w, strings.Join(chips, " · "))
	}
	if len(gen.Analysis.Keywords) > 0 {
		fmt.Fprintln(w, "keywords:", strings.Join(gen.Analysis.Keywords, ", "))
	}
	fmt.Fprintln(w)
	printTracks(w, gen.Candidates)
}

func printTracks(w io.Writer, tracks []mixtape.Track) {
	for i, t := range tracks {
		line := fmt.Sprintf("%3d. %s - %s", i+1, t.Title, t.Artist)
		if !t.HasPreview() {
			line += "  (no preview)"
		}
		fmt.Fprintln(w, line)
	}
}

func init() {
	generateCmd.Flags().BoolVarP(&generateAdd, "add", "a", false, "add every song found to your mixtape")
	rootCmd.AddCommand(generateCmd)
}
