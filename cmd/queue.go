package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/llehouerou/mixtape/internal/app"
	"github.com/llehouerou/mixtape/internal/errmsg"
	"github.com/llehouerou/mixtape/internal/mixtape"
)

var queueCmd = &cobra.Command{
	Use:     "queue",
	Aliases: []string{"ls"},
	Short:   "List the songs in your mixtape",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(ctx, a); err != nil {
				return err
			}
			tracks := a.Queue.Tracks()
			if len(tracks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Your mixtape is empty")
				return nil
			}
			printTracks(cmd.OutOrStdout(), tracks)
			return nil
		})
	},
}

var queueRemoveCmd = &cobra.Command{
	Use:   "rm <position|track-id>",
	Short: "Remove a song from your mixtape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(ctx, a); err != nil {
				return err
			}
			id, err := resolveTrack(a.Queue.Tracks(), args[0])
			if err != nil {
				return err
			}
			if err := a.Queue.Remove(ctx, id); err != nil {
				return userError(a, errmsg.OpQueueRemove, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed, %d songs left\n", a.Queue.Len())
			return nil
		})
	},
}

var queueExtendCmd = &cobra.Command{
	Use:   "extend",
	Short: "Add more songs in the spirit of your mixtape",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(ctx, a); err != nil {
				return err
			}
			res, err := a.Generate.FromQueue(ctx)
			if err != nil {
				return userError(a, errmsg.OpGeneratePlaylist, err)
			}
			out := cmd.OutOrStdout()
			printTracks(out, res.Added)
			for _, ref := range res.NotFound {
				fmt.Fprintf(out, "  not found: %s - %s\n", ref.Title, ref.Artist)
			}
			fmt.Fprintf(out, "\n%d songs added, %d not found\n", len(res.Added), len(res.NotFound))
			return nil
		})
	},
}

// resolveTrack maps a 1-based position or a track id to a track id. Ids
// are passed through even when not queued locally.
func resolveTrack(tracks []mixtape.Track, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	if n < 1 || n > len(tracks) {
		return "", fmt.Errorf("position %d out of range (1-%d)", n, len(tracks))
	}
	return tracks[n-1].ID, nil
}

func init() {
	queueCmd.AddCommand(queueRemoveCmd, queueExtendCmd)
	rootCmd.AddCommand(queueCmd)
}
