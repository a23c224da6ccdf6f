package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/revisehub/revisehub/internal/identity"
	"github.com/revisehub/revisehub/internal/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity your data is scoped to",
	RunE:  runWhoami,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the anonymous session and forget its token",
	RunE:  runLogout,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, ctx, err := newApp(cmd)
	if err != nil {
		return err
	}
	scope := identity.ScopeFromContext(ctx)
	if scope.Authenticated() {
		fmt.Printf("user %s\n", scope.UserID)
		return nil
	}
	fmt.Printf("anonymous session %s\n", scope.SessionID)
	s, err := a.sessions.Get(ctx, scope.SessionID)
	if errors.Is(err, session.ErrUnknownSession) {
		// The in-process registry forgets sessions between invocations;
		// the token on disk is still the identity.
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("expires %s\n", s.ExpiresAt.Format("2006-01-02 15:04"))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a := wireApp(cmd.Context())
	path, err := sessionTokenPath()
	if err != nil {
		return err
	}
	scope, ok := a.storedSession(path)
	if !ok {
		fmt.Println("no active session")
		return nil
	}
	if err := a.sessions.Revoke(cmd.Context(), scope.SessionID); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	fmt.Printf("session %s revoked\n", scope.SessionID)
	return nil
}
