// Package identity carries the caller's identity through the core.
//
// Every caller is exactly one of two things: an authenticated user (stable
// user id supplied by the external identity collaborator) or an anonymous
// session (ephemeral session id). All storage reads and writes are filtered
// and stamped with this scope.
package identity

import "context"

// Scope is the identity key every store operation is filtered by.
// Exactly one of UserID or SessionID is non-empty.
type Scope struct {
	UserID    string
	SessionID string
}

// UserScope returns the scope of an authenticated caller.
func UserScope(userID string) Scope { return Scope{UserID: userID} }

// SessionScope returns the scope of an anonymous caller.
func SessionScope(sessionID string) Scope { return Scope{SessionID: sessionID} }

// Authenticated reports whether the caller has a durable user identity.
func (s Scope) Authenticated() bool { return s.UserID != "" }

// Key returns the identifier rows are stamped with.
func (s Scope) Key() string {
	if s.UserID != "" {
		return s.UserID
	}
	return s.SessionID
}

// Zero reports whether the scope carries no identity at all.
func (s Scope) Zero() bool { return s.UserID == "" && s.SessionID == "" }

type ctxKey string

const ctxKeyScope ctxKey = "scope"

func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, ctxKeyScope, s)
}

func ScopeFromContext(ctx context.Context) Scope {
	if v := ctx.Value(ctxKeyScope); v != nil {
		if s, ok := v.(Scope); ok {
			return s
		}
	}
	return Scope{}
}
