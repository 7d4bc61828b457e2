package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"graphlearn/internal/domain"
	"graphlearn/internal/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in to the platform. The password is read from the terminal without
echo, or from the first line of standard input when it is not a terminal.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username")
	_ = loginCmd.MarkFlagRequired("username")
}

// Authenticator signs a user in.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.Token, error)
}

// SessionWriter stores the signed-in session.
type SessionWriter interface {
	Login(ctx context.Context, token string) error
	UserID(ctx context.Context) string
}

func runLogin(cmd *cobra.Command, _ []string) error {
	container, cleanup, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	password, err := readPassword(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return signIn(cmd.Context(), container.API, container.Session, cmd.OutOrStdout(),
		domain.Credentials{Username: loginUsername, Password: password})
}

// signIn exchanges credentials for a token and stores it.
func signIn(ctx context.Context, api Authenticator, store SessionWriter, out io.Writer, creds domain.Credentials) error {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("username and password are required")
	}
	token, err := api.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login failed: %s", ui.Present(err))
	}
	if err := store.Login(ctx, token.AccessToken); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	fmt.Fprintf(out, "Signed in as %s (user %s)\n", creds.Username, store.UserID(ctx))
	return nil
}

func readPassword(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	container, cleanup, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := container.Session.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}
