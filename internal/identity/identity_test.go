package identity

import (
	"context"
	"testing"
	"time"
)

func TestScope(t *testing.T) {
	user := UserScope("alice")
	if !user.Authenticated() || user.Key() != "alice" || user.Zero() {
		t.Errorf("user scope = %+v", user)
	}

	anon := SessionScope("sess-1")
	if anon.Authenticated() || anon.Key() != "sess-1" || anon.Zero() {
		t.Errorf("session scope = %+v", anon)
	}

	if !(Scope{}).Zero() {
		t.Error("empty scope must be zero")
	}
}

func TestScopeContext(t *testing.T) {
	ctx := WithScope(context.Background(), UserScope("alice"))
	if got := ScopeFromContext(ctx); got.UserID != "alice" {
		t.Errorf("scope = %+v", got)
	}
	if got := ScopeFromContext(context.Background()); !got.Zero() {
		t.Errorf("scope without value = %+v", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	for _, scope := range []Scope{UserScope("alice"), SessionScope("sess-1")} {
		tok, err := svc.Issue(scope)
		if err != nil {
			t.Fatal(err)
		}
		got, err := svc.Parse(tok)
		if err != nil {
			t.Fatal(err)
		}
		if got != scope {
			t.Errorf("got %+v, want %+v", got, scope)
		}
	}
}

func TestTokenRejectsEmptyScope(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	if _, err := svc.Issue(Scope{}); err == nil {
		t.Error("expected error for empty scope")
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewTokenService("secret-a", time.Hour).Issue(UserScope("alice"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewTokenService("secret-b", time.Hour).Parse(tok); err == nil {
		t.Error("expected error for mismatched secret")
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret", time.Nanosecond)
	tok, err := svc.Issue(UserScope("alice"))
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := svc.Parse(tok); err == nil {
		t.Error("expected error for expired token")
	}
}
