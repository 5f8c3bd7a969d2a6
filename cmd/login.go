// ABOUTME: Login command for examctl CLI
// ABOUTME: Authenticates against the platform and saves the session token

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/waynezhang680/examctl/internal/session"
)

var (
	loginUsername      string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the exam platform",
	Long: `Sign in with your username and password. The session token is saved in the
config directory and reused by later commands until you log out or it expires.

Example:
  examctl login --username alice
  echo "$PASSWORD" | examctl login --username alice --password-stdin`,
	Run: func(cmd *cobra.Command, args []string) {
		runWithApp(func(ctx context.Context, a *app, w io.Writer) int {
			password, err := readPassword(os.Stdin, loginPasswordStdin, "Password: ")
			if err != nil {
				return reportError(w, err)
			}
			return runLogin(ctx, a, w, loginUsername, password)
		})
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
	loginCmd.MarkFlagRequired("username")
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, a *app, w io.Writer, username, password string) int {
	if _, code, ok := a.guard(w, "/login"); !ok {
		return code
	}
	if username == "" || password == "" {
		return reportError(w, errors.New("username and password are required"))
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		return reportError(w, err)
	}

	printSession(w, a, "Logged in")
	return 0
}

// printSession writes the established session in human or JSON form
func printSession(w io.Writer, a *app, verb string) {
	identity, _ := a.session.Identity()

	if IsJSONOutput() {
		output := map[string]interface{}{
			"user":  identity,
			"state": session.Describe(a.session.State()),
		}
		if exp, ok := session.TokenExpiry(a.session.Token()); ok {
			output["expires_at"] = exp
		}
		writeJSON(w, output)
		return
	}

	fmt.Fprintf(w, "%s as %s\n", verb, identity.Username)
	if exp, ok := session.TokenExpiry(a.session.Token()); ok {
		fmt.Fprintf(w, "Session expires %s\n", exp.Local().Format("2006-01-02 15:04 MST"))
	}
}

// readPassword reads a password from in when fromStdin is set, otherwise
// prompts on the terminal with echo disabled
func readPassword(in io.Reader, fromStdin bool, prompt string) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for password prompt (use --password-stdin)")
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(password), nil
}
