package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/mixtape/internal/app"
	"github.com/llehouerou/mixtape/internal/errmsg"
)

var (
	authEmail    string
	authPassword string
	authUsername string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			p := newPrompter(cmd)
			email, err := p.ask("Email", authEmail, false)
			if err != nil {
				return err
			}
			password, err := p.ask("Password", authPassword, true)
			if err != nil {
				return err
			}
			if err := a.Login(ctx, email, password); err != nil {
				return userError(a, errmsg.OpLogin, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%d songs in your mixtape)\n",
				a.Sessions.Current().Username, a.Queue.Len())
			return nil
		})
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			p := newPrompter(cmd)
			username, err := p.ask("Username", authUsername, false)
			if err != nil {
				return err
			}
			email, err := p.ask("Email", authEmail, false)
			if err != nil {
				return err
			}
			password, err := p.ask("Password", authPassword, true)
			if err != nil {
				return err
			}
			if err := a.Signup(ctx, username, email, password); err != nil {
				return userError(a, errmsg.OpSignup, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", a.Sessions.Current().Username)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			out := cmd.OutOrStdout()
			if !a.Authenticated() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			if err := a.Logout(); err != nil {
				return userError(a, errmsg.OpSession, err)
			}
			fmt.Fprintln(out, "Logged out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			sess := a.Sessions.Current()
			if sess == nil {
				return errNotLoggedIn
			}
			user, err := a.Backend.Me(ctx, sess)
			if err != nil {
				return userError(a, errmsg.OpSession, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", user.Username, user.Email)
			if !sess.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "session expires %s\n", humanize.Time(sess.ExpiresAt))
			}
			return nil
		})
	},
}

// prompter reads missing credentials. Secrets are read without echo when
// input is a terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	tty *os.File
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{
		in:  bufio.NewReader(cmd.InOrStdin()),
		out: cmd.ErrOrStderr(),
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(f.Fd()) {
		p.tty = f
	}
	return p
}

// ask returns value, or reads it when empty.
func (p *prompter) ask(label, value string, secret bool) (string, error) {
	if value != "" {
		return value, nil
	}
	name := strings.ToLower(label)
	fmt.Fprintf(p.out, "%s: ", label)
	if secret && p.tty != nil {
		b, err := term.ReadPassword(p.tty.Fd())
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		return string(b), nil
	}
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return line, nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password (prompted when empty)")
	}
	signupCmd.Flags().StringVar(&authUsername, "username", "", "display name")
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}
