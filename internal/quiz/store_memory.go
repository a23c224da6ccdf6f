package quiz

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/revisehub/revisehub/internal/identity"
)

// memoryStore is the in-process fallback used when no durable store is
// configured. It implements the exact same scoping and cascade-delete
// behavior as SQLStore, not a simplified subset.
type memoryStore struct {
	mu        sync.RWMutex
	revisions map[string]Revision
	runs      map[string]Run
	questions map[string][]Question // runID -> ordered batch
	answers   map[string][]Answer   // runID -> submission order
}

func NewMemoryStore() Store {
	return &memoryStore{
		revisions: map[string]Revision{},
		runs:      map[string]Run{},
		questions: map[string][]Question{},
		answers:   map[string][]Answer{},
	}
}

// NewStore selects the backend: the SQL store when a database is
// configured, the in-process store otherwise. Backend absence is a
// routine state, never an error.
func NewStore(db *sql.DB, driver string) Store {
	if db == nil {
		return NewMemoryStore()
	}
	return NewSQLStore(db, driver)
}

// owns reports whether a row stamped (userID, sessionID) is visible to the
// scope. A row stamped with one identity kind never matches a lookup keyed
// by the other.
func owns(userID, sessionID string, scope identity.Scope) bool {
	if scope.Zero() {
		return false
	}
	if scope.Authenticated() {
		return userID != "" && userID == scope.UserID
	}
	return sessionID != "" && sessionID == scope.SessionID
}

func (m *memoryStore) CreateRevision(_ context.Context, scope identity.Scope, rev Revision) (Revision, error) {
	if scope.Zero() {
		return Revision{}, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	if rev.QuestionStyle == "" {
		rev.QuestionStyle = StyleFreeText
	}
	rev.UserID, rev.SessionID = scope.UserID, scope.SessionID
	rev.CreatedAt = time.Now().Unix()
	m.revisions[rev.ID] = rev
	return rev, nil
}

func (m *memoryStore) ListRevisions(_ context.Context, scope identity.Scope) ([]Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Revision{}
	for _, r := range m.revisions {
		if owns(r.UserID, r.SessionID, scope) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) GetRevision(_ context.Context, scope identity.Scope, id string) (Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.revisions[id]
	if !ok || !owns(r.UserID, r.SessionID, scope) {
		return Revision{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) DeleteRevision(_ context.Context, scope identity.Scope, id string) error {
	if !scope.Authenticated() {
		return ErrSignInRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.revisions[id]
	if !ok || !owns(r.UserID, r.SessionID, scope) {
		return ErrNotFound
	}
	delete(m.revisions, id)
	for runID, run := range m.runs {
		if run.RevisionID == id {
			delete(m.runs, runID)
			delete(m.questions, runID)
			delete(m.answers, runID)
		}
	}
	return nil
}

func (m *memoryStore) CreateRun(_ context.Context, scope identity.Scope, revisionID string) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev, ok := m.revisions[revisionID]
	if !ok || !owns(rev.UserID, rev.SessionID, scope) {
		return Run{}, ErrNotFound
	}
	r := Run{
		ID:         uuid.NewString(),
		RevisionID: revisionID,
		Status:     StatusRunning,
		UserID:     scope.UserID,
		SessionID:  scope.SessionID,
		CreatedAt:  time.Now().Unix(),
	}
	m.runs[r.ID] = r
	return r, nil
}

func (m *memoryStore) GetRun(_ context.Context, scope identity.Scope, id string) (Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	if !ok || !owns(r.UserID, r.SessionID, scope) {
		return Run{}, ErrNotFound
	}
	if n := len(m.questions[id]); n > 0 && len(m.answers[id]) >= n {
		r.Status = StatusCompleted
	}
	return r, nil
}

func (m *memoryStore) getRunLocked(scope identity.Scope, id string) (Run, error) {
	r, ok := m.runs[id]
	if !ok || !owns(r.UserID, r.SessionID, scope) {
		return Run{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) ReplaceQuestions(_ context.Context, scope identity.Scope, runID string, questions []Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.getRunLocked(scope, runID); err != nil {
		return err
	}
	batch := make([]Question, len(questions))
	copy(batch, questions)
	m.questions[runID] = batch
	// Answers referenced the replaced batch; they go with it, matching the
	// SQL cascade.
	delete(m.answers, runID)
	return nil
}

func (m *memoryStore) GetQuestions(_ context.Context, scope identity.Scope, runID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, err := m.getRunLocked(scope, runID); err != nil {
		return nil, err
	}
	out := make([]Question, len(m.questions[runID]))
	copy(out, m.questions[runID])
	return out, nil
}

func (m *memoryStore) StoreAnswer(_ context.Context, scope identity.Scope, runID string, ans Answer) (Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.getRunLocked(scope, runID); err != nil {
		return Answer{}, err
	}
	found := false
	for _, q := range m.questions[runID] {
		if q.ID == ans.QuestionID {
			found = true
			break
		}
	}
	if !found {
		return Answer{}, ErrNotFound
	}
	for _, a := range m.answers[runID] {
		if a.QuestionID == ans.QuestionID {
			return Answer{}, ErrDuplicateAnswer
		}
	}
	ans.ID = uuid.NewString()
	ans.RunID = runID
	ans.IsCorrect = ans.Score == ScoreFull
	ans.CreatedAt = time.Now().UnixNano()
	m.answers[runID] = append(m.answers[runID], ans)
	return ans, nil
}

func (m *memoryStore) GetAnswers(_ context.Context, scope identity.Scope, runID string) ([]Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, err := m.getRunLocked(scope, runID); err != nil {
		return nil, err
	}
	out := make([]Answer, len(m.answers[runID]))
	copy(out, m.answers[runID])
	return out, nil
}

func (m *memoryStore) ListCompletedRuns(_ context.Context, scope identity.Scope) ([]RunSummary, error) {
	if !scope.Authenticated() {
		return []RunSummary{}, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	summaries := []RunSummary{}
	for runID, run := range m.runs {
		if !owns(run.UserID, run.SessionID, scope) {
			continue
		}
		answers := m.answers[runID]
		if len(answers) == 0 {
			continue
		}
		rev, ok := m.revisions[run.RevisionID]
		if !ok {
			continue
		}
		var total float64
		for _, a := range answers {
			total += scoreValue(a.Score)
		}
		summaries = append(summaries, RunSummary{
			RunID:          runID,
			RevisionID:     run.RevisionID,
			RevisionName:   rev.Name,
			Subject:        rev.Subject,
			CompletedAt:    run.CreatedAt,
			Score:          total / float64(len(answers)),
			TotalQuestions: len(answers),
			Threshold:      rev.AccuracyThreshold,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].CompletedAt > summaries[j].CompletedAt })
	return summaries, nil
}
