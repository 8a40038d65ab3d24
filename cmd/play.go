package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/llehouerou/mixtape/internal/app"
	"github.com/llehouerou/mixtape/internal/errmsg"
	"github.com/llehouerou/mixtape/internal/playback"
	"github.com/llehouerou/mixtape/internal/ui/playerbar"
)

var playCmd = &cobra.Command{
	Use:   "play [position]",
	Short: "Play your mixtape from the terminal",
	Long:  "Plays the previews of your mixtape in order, starting at position (default 1). Interrupt to stop.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := requireLogin(ctx, a); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			n := a.Queue.Len()
			if n == 0 {
				fmt.Fprintln(out, "Your mixtape is empty")
				return nil
			}
			start := 1
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 1 || v > n {
					return fmt.Errorf("position must be between 1 and %d", n)
				}
				start = v
			}

			sub := a.Playback.Subscribe()
			defer a.Playback.Unsubscribe(sub)

			if err := a.PlayIndex(ctx, start-1); err != nil {
				return userError(a, errmsg.OpPlaybackStart, err)
			}
			printNowPlaying(out, a.Playback.Snapshot())
			return follow(ctx, out, a, sub)
		})
	},
}

// follow prints track changes until playback goes idle or ctx ends.
func follow(ctx context.Context, out io.Writer, a *app.App, sub *playback.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			a.Playback.Stop()
			return nil
		case <-sub.Done:
			return nil
		case c := <-sub.TrackChanged:
			if c.Current != nil {
				printNowPlaying(out, a.Playback.Snapshot())
			}
		case c := <-sub.StateChanged:
			if c.Current == playback.StateIdle {
				return nil
			}
		case e := <-sub.Error:
			fmt.Fprintln(out, "  ", errmsg.Friendly(errmsg.OpPlaybackStart, e.Err))
		}
	}
}

func printNowPlaying(w io.Writer, s playback.Snapshot) {
	if s.Track == nil {
		return
	}
	dur := ""
	if s.Duration > 0 {
		dur = " [" + playerbar.FormatDuration(s.Duration) + "]"
	}
	fmt.Fprintf(w, "▶ %d/%d %s - %s%s\n", s.Index+1, s.QueueLen, s.Track.Title, s.Track.Artist, dur)
}

func init() {
	rootCmd.AddCommand(playCmd)
}
