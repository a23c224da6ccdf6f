package quiz

import (
	"context"
	"errors"

	"github.com/revisehub/revisehub/internal/identity"
)

// Sentinel errors shared by both store backends.
var (
	// ErrNotFound covers both "does not exist" and "exists but belongs to a
	// different identity" — callers can never tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrSignInRequired: anonymous callers may never delete a revision,
	// even one stamped with their own session id.
	ErrSignInRequired = errors.New("sign-in required")
	// ErrDuplicateAnswer: one answer per (run, question).
	ErrDuplicateAnswer = errors.New("question already answered")
)

// Store is the single CRUD surface for revisions, runs, questions and
// answers. Both backends honor the same scoping rule: authenticated
// callers are filtered by user id, anonymous callers by session id, and a
// row stamped with one never matches a lookup keyed by the other.
type Store interface {
	CreateRevision(ctx context.Context, scope identity.Scope, rev Revision) (Revision, error)
	ListRevisions(ctx context.Context, scope identity.Scope) ([]Revision, error)
	GetRevision(ctx context.Context, scope identity.Scope, id string) (Revision, error)
	DeleteRevision(ctx context.Context, scope identity.Scope, id string) error

	CreateRun(ctx context.Context, scope identity.Scope, revisionID string) (Run, error)
	GetRun(ctx context.Context, scope identity.Scope, id string) (Run, error)

	// ReplaceQuestions swaps the run's entire question batch atomically;
	// no partial batch is ever visible.
	ReplaceQuestions(ctx context.Context, scope identity.Scope, runID string, questions []Question) error
	GetQuestions(ctx context.Context, scope identity.Scope, runID string) ([]Question, error)

	StoreAnswer(ctx context.Context, scope identity.Scope, runID string, ans Answer) (Answer, error)
	GetAnswers(ctx context.Context, scope identity.Scope, runID string) ([]Answer, error)

	// ListCompletedRuns returns the caller's run history. Anonymous callers
	// always get an empty slice: history needs a durable identity.
	ListCompletedRuns(ctx context.Context, scope identity.Scope) ([]RunSummary, error)
}

// NextQuestion returns the first unanswered question of a run in ordinal
// order, or ok=false when every question has an answer.
func NextQuestion(ctx context.Context, s Store, scope identity.Scope, runID string) (Question, bool, error) {
	questions, err := s.GetQuestions(ctx, scope, runID)
	if err != nil {
		return Question{}, false, err
	}
	answers, err := s.GetAnswers(ctx, scope, runID)
	if err != nil {
		return Question{}, false, err
	}
	answered := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		answered[a.QuestionID] = struct{}{}
	}
	for _, q := range questions {
		if _, ok := answered[q.ID]; !ok {
			return q, true, nil
		}
	}
	return Question{}, false, nil
}
