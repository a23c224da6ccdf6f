package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore_IssueAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	issued, err := s.Issue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if issued.ID == "" {
		t.Fatal("empty session id")
	}
	if !issued.ExpiresAt.After(issued.CreatedAt) {
		t.Errorf("expiry %v not after creation %v", issued.ExpiresAt, issued.CreatedAt)
	}

	got, err := s.Get(ctx, issued.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != issued.ID {
		t.Errorf("got %q, want %q", got.ID, issued.ID)
	}
}

func TestMemoryStore_UnknownSession(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	if _, err := s.Get(context.Background(), "never-issued"); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("err = %v, want ErrUnknownSession", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Nanosecond)

	issued, err := s.Issue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := s.Get(ctx, issued.ID); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("expired session: err = %v, want ErrUnknownSession", err)
	}
	// Expired sessions cannot be refreshed back to life.
	if _, err := s.Refresh(ctx, issued.ID); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("refresh after expiry: err = %v, want ErrUnknownSession", err)
	}
}

func TestMemoryStore_Refresh(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	issued, err := s.Issue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	refreshed, err := s.Refresh(ctx, issued.ID)
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.ExpiresAt.Before(issued.ExpiresAt) {
		t.Errorf("refresh moved expiry backwards: %v -> %v", issued.ExpiresAt, refreshed.ExpiresAt)
	}
}

func TestMemoryStore_Revoke(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	issued, err := s.Issue(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Revoke(ctx, issued.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, issued.ID); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("err = %v, want ErrUnknownSession", err)
	}
	// Revoking twice is a no-op.
	if err := s.Revoke(ctx, issued.ID); err != nil {
		t.Errorf("second revoke: %v", err)
	}
}
