package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/revisehub/revisehub/internal/identity"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// ownerColumn returns the column a scope filters on.
func ownerColumn(scope identity.Scope) string {
	if scope.Authenticated() {
		return "user_id"
	}
	return "session_id"
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// ensureUser upserts the authenticated caller into users on first write.
func (s *SQLStore) ensureUser(ctx context.Context, scope identity.Scope) error {
	if !scope.Authenticated() {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, created_at) VALUES ($1,$2) ON CONFLICT (id) DO NOTHING`,
		scope.UserID, time.Now().Unix())
	return err
}

func (s *SQLStore) CreateRevision(ctx context.Context, scope identity.Scope, rev Revision) (Revision, error) {
	if scope.Zero() {
		return Revision{}, ErrNotFound
	}
	if err := s.ensureUser(ctx, scope); err != nil {
		return Revision{}, err
	}
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	if rev.QuestionStyle == "" {
		rev.QuestionStyle = StyleFreeText
	}
	rev.UserID, rev.SessionID = scope.UserID, scope.SessionID
	rev.CreatedAt = time.Now().Unix()
	tj, err := json.Marshal(rev.Topics)
	if err != nil {
		return Revision{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO revisions (id,user_id,session_id,name,subject,topics_json,description,desired_question_count,accuracy_threshold,question_style,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rev.ID, nullable(rev.UserID), nullable(rev.SessionID), rev.Name, rev.Subject, string(tj),
		rev.Description, rev.DesiredQuestionCount, rev.AccuracyThreshold, rev.QuestionStyle, rev.CreatedAt)
	if err != nil {
		return Revision{}, err
	}
	return rev, nil
}

func (s *SQLStore) ListRevisions(ctx context.Context, scope identity.Scope) ([]Revision, error) {
	if scope.Zero() {
		return []Revision{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,subject,topics_json,description,desired_question_count,accuracy_threshold,question_style,created_at
		 FROM revisions WHERE `+ownerColumn(scope)+`=$1 ORDER BY created_at DESC`, scope.Key())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Revision{}
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRevision(row rowScanner) (Revision, error) {
	var r Revision
	var topics string
	if err := row.Scan(&r.ID, &r.Name, &r.Subject, &topics, &r.Description,
		&r.DesiredQuestionCount, &r.AccuracyThreshold, &r.QuestionStyle, &r.CreatedAt); err != nil {
		return Revision{}, err
	}
	if err := json.Unmarshal([]byte(topics), &r.Topics); err != nil {
		r.Topics = nil
	}
	return r, nil
}

func (s *SQLStore) GetRevision(ctx context.Context, scope identity.Scope, id string) (Revision, error) {
	if scope.Zero() {
		return Revision{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,subject,topics_json,description,desired_question_count,accuracy_threshold,question_style,created_at
		 FROM revisions WHERE id=$1 AND `+ownerColumn(scope)+`=$2`, id, scope.Key())
	r, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, ErrNotFound
	}
	return r, err
}

func (s *SQLStore) DeleteRevision(ctx context.Context, scope identity.Scope, id string) error {
	if !scope.Authenticated() {
		return ErrSignInRequired
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM revisions WHERE id=$1 AND user_id=$2`, id, scope.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) CreateRun(ctx context.Context, scope identity.Scope, revisionID string) (Run, error) {
	if _, err := s.GetRevision(ctx, scope, revisionID); err != nil {
		return Run{}, err
	}
	if err := s.ensureUser(ctx, scope); err != nil {
		return Run{}, err
	}
	r := Run{
		ID:         uuid.NewString(),
		RevisionID: revisionID,
		Status:     StatusRunning,
		UserID:     scope.UserID,
		SessionID:  scope.SessionID,
		CreatedAt:  time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO revision_runs (id,revision_id,user_id,session_id,status,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		r.ID, r.RevisionID, nullable(r.UserID), nullable(r.SessionID), r.Status, r.CreatedAt)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

func (s *SQLStore) GetRun(ctx context.Context, scope identity.Scope, id string) (Run, error) {
	r, err := s.getRunScoped(ctx, scope, id)
	if err != nil {
		return Run{}, err
	}
	// Completion is derived, never stored: every question answered.
	var questions, answers int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM run_questions WHERE run_id=$1`, id).Scan(&questions); err != nil {
		return Run{}, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM run_answers WHERE run_id=$1`, id).Scan(&answers); err != nil {
		return Run{}, err
	}
	if questions > 0 && answers >= questions {
		r.Status = StatusCompleted
	}
	return r, nil
}

func (s *SQLStore) getRunScoped(ctx context.Context, scope identity.Scope, id string) (Run, error) {
	if scope.Zero() {
		return Run{}, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id,revision_id,status,created_at FROM revision_runs
		 WHERE id=$1 AND `+ownerColumn(scope)+`=$2`, id, scope.Key())
	var r Run
	if err := row.Scan(&r.ID, &r.RevisionID, &r.Status, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return r, nil
}

func (s *SQLStore) ReplaceQuestions(ctx context.Context, scope identity.Scope, runID string, questions []Question) error {
	if _, err := s.getRunScoped(ctx, scope, runID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	// Delete-then-insert inside one transaction: the cascade removes
	// answers pointing at the old batch, and no reader sees a partial set.
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_questions WHERE run_id=$1`, runID); err != nil {
		return err
	}
	for _, q := range questions {
		var options interface{}
		if len(q.Options) > 0 {
			oj, err := json.Marshal(q.Options)
			if err != nil {
				return err
			}
			options = string(oj)
		}
		var correct interface{}
		if q.Style == StyleMultipleChoice {
			correct = q.CorrectIndex
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_questions (id,run_id,question_text,question_index,question_style,options_json,correct_answer_index,rationale)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			q.ID, runID, q.Text, q.Index, q.Style, options, correct, nullable(q.Rationale)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetQuestions(ctx context.Context, scope identity.Scope, runID string) ([]Question, error) {
	if _, err := s.getRunScoped(ctx, scope, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,question_text,question_index,question_style,options_json,correct_answer_index,rationale
		 FROM run_questions WHERE run_id=$1 ORDER BY question_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		var q Question
		var options, rationale sql.NullString
		var correct sql.NullInt64
		if err := rows.Scan(&q.ID, &q.Text, &q.Index, &q.Style, &options, &correct, &rationale); err != nil {
			return nil, err
		}
		if options.Valid {
			if err := json.Unmarshal([]byte(options.String), &q.Options); err != nil {
				q.Options = nil
			}
		}
		q.CorrectIndex = -1
		if correct.Valid {
			q.CorrectIndex = int(correct.Int64)
		}
		q.Rationale = rationale.String
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) StoreAnswer(ctx context.Context, scope identity.Scope, runID string, ans Answer) (Answer, error) {
	if _, err := s.getRunScoped(ctx, scope, runID); err != nil {
		return Answer{}, err
	}
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM run_questions WHERE id=$1 AND run_id=$2`, ans.QuestionID, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Answer{}, ErrNotFound
	}
	if err != nil {
		return Answer{}, err
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT 1 FROM run_answers WHERE run_id=$1 AND question_id=$2`, runID, ans.QuestionID).Scan(&exists)
	if err == nil {
		return Answer{}, ErrDuplicateAnswer
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Answer{}, err
	}
	ans.ID = uuid.NewString()
	ans.RunID = runID
	ans.IsCorrect = ans.Score == ScoreFull
	ans.CreatedAt = time.Now().UnixNano()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO run_answers (id,run_id,question_id,student_answer,score,is_correct,correct_answer,explanation,error,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		ans.ID, ans.RunID, ans.QuestionID, ans.StudentAnswer, ans.Score, ans.IsCorrect,
		ans.CorrectAnswer, nullable(ans.Explanation), nullable(ans.Error), ans.CreatedAt)
	if err != nil {
		return Answer{}, err
	}
	return ans, nil
}

func (s *SQLStore) GetAnswers(ctx context.Context, scope identity.Scope, runID string) ([]Answer, error) {
	if _, err := s.getRunScoped(ctx, scope, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,question_id,student_answer,score,is_correct,correct_answer,explanation,error,created_at
		 FROM run_answers WHERE run_id=$1 ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Answer{}
	for rows.Next() {
		var a Answer
		var explanation, errText sql.NullString
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.StudentAnswer, &a.Score, &a.IsCorrect,
			&a.CorrectAnswer, &explanation, &errText, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.RunID = runID
		a.Explanation = explanation.String
		a.Error = errText.String
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListCompletedRuns(ctx context.Context, scope identity.Scope) ([]RunSummary, error) {
	if !scope.Authenticated() {
		return []RunSummary{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.revision_id, r.created_at, v.name, v.subject, v.accuracy_threshold
		 FROM revision_runs r JOIN revisions v ON v.id = r.revision_id
		 WHERE r.user_id=$1 ORDER BY r.created_at DESC`, scope.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	summaries := []RunSummary{}
	var candidates []RunSummary
	for rows.Next() {
		var sum RunSummary
		if err := rows.Scan(&sum.RunID, &sum.RevisionID, &sum.CompletedAt,
			&sum.RevisionName, &sum.Subject, &sum.Threshold); err != nil {
			return nil, err
		}
		candidates = append(candidates, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, sum := range candidates {
		scores, err := s.answerScores(ctx, sum.RunID)
		if err != nil {
			return nil, err
		}
		// A run counts as completed once it has at least one answer.
		if len(scores) == 0 {
			continue
		}
		var total float64
		for _, sc := range scores {
			total += scoreValue(sc)
		}
		sum.Score = total / float64(len(scores))
		sum.TotalQuestions = len(scores)
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *SQLStore) answerScores(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT score FROM run_answers WHERE run_id=$1`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var sc string
		if err := rows.Scan(&sc); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
