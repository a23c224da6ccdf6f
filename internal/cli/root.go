// Package cli implements the revisehub command tree. The CLI drives the
// core directly: model output is handed to it as saved text files, never
// fetched over the network.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/revisehub/revisehub/internal/config"
	"github.com/revisehub/revisehub/internal/db"
	"github.com/revisehub/revisehub/internal/identity"
	"github.com/revisehub/revisehub/internal/quiz"
	"github.com/revisehub/revisehub/internal/session"
)

var userID string

var rootCmd = &cobra.Command{
	Use:   "revisehub",
	Short: "Manage study revisions, runs and marked answers",
	Long: `revisehub turns saved model output into practice questions and graded,
explained results. Without --user you act as an anonymous session: your
data is scoped to that session and completed-run history is unavailable.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "authenticated user id (omit for an anonymous session)")
	rootCmd.AddCommand(revisionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired collaborators every command needs.
type app struct {
	cfg      config.Config
	store    quiz.Store
	sessions session.Store
	tokens   *identity.TokenService
}

// wireApp builds the backends without touching the caller's identity, so
// commands like logout can run without minting a session as a side effect.
func wireApp(ctx context.Context) *app {
	cfg := config.FromEnv()
	a := &app{
		cfg:    cfg,
		tokens: identity.NewTokenService(cfg.SessionSecret, cfg.SessionTTL),
	}

	if cfg.DBDriver == "" {
		log.Printf("no database configured; using in-process store")
		a.store = quiz.NewStore(nil, "")
	} else {
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			// Backend unavailability is never a hard failure.
			log.Printf("database unavailable (%v); falling back to in-process store", err)
			a.store = quiz.NewStore(nil, "")
		} else {
			a.store = quiz.NewStore(dbh, cfg.DBDriver)
		}
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		a.sessions = session.NewMemoryStore(cfg.SessionTTL)
	}
	return a
}

// newApp wires the backends and attaches the caller's scope to the
// returned context; commands read it back with identity.ScopeFromContext.
func newApp(cmd *cobra.Command) (*app, context.Context, error) {
	ctx := cmd.Context()
	a := wireApp(ctx)
	scope, err := a.resolveScope(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a, identity.WithScope(ctx, scope), nil
}

// resolveScope picks the caller's identity: --user wins, otherwise the
// anonymous session token persisted next to the config is reused or a
// fresh session is issued.
func (a *app) resolveScope(ctx context.Context) (identity.Scope, error) {
	if userID != "" {
		return identity.UserScope(userID), nil
	}

	path, err := sessionTokenPath()
	if err != nil {
		return identity.Scope{}, err
	}

	if scope, ok := a.storedSession(path); ok {
		if a.cfg.RedisAddr == "" {
			return scope, nil
		}
		if _, err := a.sessions.Refresh(ctx, scope.SessionID); err == nil {
			return scope, nil
		}
		// Expired or unknown in the registry: fall through and issue
		// a fresh session.
	}

	s, err := a.sessions.Issue(ctx)
	if err != nil {
		return identity.Scope{}, fmt.Errorf("issue session: %w", err)
	}
	scope := identity.SessionScope(s.ID)
	tok, err := a.tokens.Issue(scope)
	if err != nil {
		return identity.Scope{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return identity.Scope{}, err
	}
	if err := os.WriteFile(path, []byte(tok), 0o600); err != nil {
		return identity.Scope{}, err
	}
	return scope, nil
}

// storedSession parses the persisted session token, ok=false when no valid
// anonymous token is on disk.
func (a *app) storedSession(path string) (identity.Scope, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return identity.Scope{}, false
	}
	scope, err := a.tokens.Parse(string(raw))
	if err != nil || scope.Authenticated() {
		return identity.Scope{}, false
	}
	return scope, true
}

func sessionTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".revisehub", "session"), nil
}

func printJSON(v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

// readInput reads a model-output file, or stdin when path is "-".
func readInput(path string) (string, error) {
	if path == "-" {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(buf), nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
