// Package cmd implements the mixtape command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/llehouerou/mixtape/internal/app"
	"github.com/llehouerou/mixtape/internal/config"
	"github.com/llehouerou/mixtape/internal/errmsg"
	"github.com/llehouerou/mixtape/internal/logging"
	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/stderr"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "mixtape",
	Short:         "Turn a prompt into a playable mixtape.",
	Long:          "Describe a mood and mixtape finds songs for it, keeps your queue and plays previews with a theme that follows the music.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"mirror logs to stderr (ignored by the interactive UI)")
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(stderr bool) (*config.Config, *zap.Logger, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.GetLogConfig(), logging.Options{Stderr: stderr})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logging: %w", err)
	}
	return cfg, logger, closer, nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, logger, closer, err := setup(false)
	if err != nil {
		return err
	}
	defer closer.Close()

	// The audio backend may write to fd 2 as soon as it is initialized.
	capture, err := stderr.Start(logger)
	if err != nil {
		logger.Warn("stderr capture unavailable", zap.Error(err))
	}
	defer capture.Stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("shutdown", zap.Error(cerr))
		}
	}()

	m := app.NewModel(a)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// openApp builds the App behind one-shot commands. The returned func
// releases it.
var openApp = func(verbose bool) (*app.App, func(), error) {
	cfg, logger, closer, err := setup(verbose)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.NewHeadless(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, nil, errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	return a, func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("shutdown", zap.Error(cerr))
		}
		closer.Close()
	}, nil
}

// withApp runs fn against a headless App. Interrupts cancel ctx.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	a, release, err := openApp(verbose)
	if err != nil {
		return err
	}
	defer release()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return fn(ctx, a)
}

// userError turns err into the message shown for op. The cause is logged.
// Tracks without a preview point at the external player instead.
func userError(a *app.App, op errmsg.Op, err error) error {
	a.Logger.Debug("command failed", zap.String("op", string(op)), zap.Error(err))
	msg := errmsg.Friendly(op, err)
	var pu *mixtape.PlaybackUnavailableError
	if errors.As(err, &pu) && pu.EmbedURL != "" {
		msg += ": " + pu.EmbedURL
	}
	return errors.New(msg)
}

// errNotLoggedIn is returned before any request when no session is stored.
var errNotLoggedIn = errors.New("not logged in (run: mixtape login)")

// requireLogin loads the queue of the stored session.
func requireLogin(ctx context.Context, a *app.App) error {
	if !a.Authenticated() {
		return errNotLoggedIn
	}
	if err := a.Queue.Load(ctx); err != nil {
		return userError(a, errmsg.OpQueueLoad, err)
	}
	return nil
}
