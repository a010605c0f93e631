// auth.go implements register, login, logout and whoami.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/reposcribe/reposcribe-cli/internal/log"
	"github.com/reposcribe/reposcribe-cli/internal/state"
)

// minPasswordLength matches the interactive registration form.
const minPasswordLength = 6

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the issued token",
	Long: `Log in to the reposcribe server. The password is read from a hidden
prompt, or from standard input with --password-stdin.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token and current session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var (
	usernameFlag      string
	passwordStdinFlag bool
)

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&usernameFlag, "username", "u", "", "Account username (prompted when empty)")
		c.Flags().BoolVar(&passwordStdinFlag, "password-stdin", false, "Read the password from standard input")
	}
}

func runRegister(cmd *cobra.Command, args []string) error {
	return signIn(cmd, true)
}

func runLogin(cmd *cobra.Command, args []string) error {
	return signIn(cmd, false)
}

func signIn(cmd *cobra.Command, register bool) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	username := strings.TrimSpace(usernameFlag)
	if username == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Username: ")
		if username, err = readLine(in); err != nil {
			return err
		}
	}
	if username == "" {
		return errors.New("username is required")
	}

	password, err := readPassword(cmd, in, register)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("password is required")
	}
	if register && len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	call := e.client.Login
	if register {
		call = e.client.Register
	}
	resp, err := e.auth.SignIn(cmd.Context(), call, register, username, password, e.logger)
	if err != nil {
		return err
	}

	msg := resp.Message
	if msg == "" {
		msg = "Logged in"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s as %s\n", strings.TrimSuffix(msg, "."), resp.Username)
	return nil
}

// readPassword reads from stdin when --password-stdin is set, otherwise
// prompts without echo. Registration asks twice on a terminal.
func readPassword(cmd *cobra.Command, in *bufio.Reader, register bool) (string, error) {
	if passwordStdinFlag {
		return readLine(in)
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal for the password prompt; use --password-stdin")
	}

	prompt := func(label string) (string, error) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	password, err := prompt("Password: ")
	if err != nil || !register {
		return password, err
	}
	confirm, err := prompt("Confirm password: ")
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	username := e.auth.Username()
	if err := e.auth.Logout(); err != nil {
		return err
	}
	if err := e.store.ClearSessions(); err != nil {
		return err
	}
	e.logger.Record(log.LogEvent{Event: log.EventLogout, Username: username})
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.requireAuth(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Username: %s\n", e.auth.Username())
	fmt.Fprintf(out, "Server:   %s\n", e.client.BaseURL())
	if exp, ok := state.TokenExpiry(e.auth.Token()); ok {
		fmt.Fprintf(out, "Expires:  %s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Minute))
	}
	if sess, ok := e.sessions.Current(); ok {
		fmt.Fprintf(out, "Session:  %s (%s %s)\n", sess.ID, sess.Origin, sess.Source)
	}
	return nil
}
