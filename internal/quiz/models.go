package quiz

// Question styles.
const (
	StyleFreeText       = "free-text"
	StyleMultipleChoice = "multiple-choice"
)

// Run statuses. "completed" is derived: a run is completed once every
// question has a matching answer; it is never written explicitly.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

// Three-tier marking scores.
const (
	ScoreFull      = "Full Marks"
	ScorePartial   = "Partial Marks"
	ScoreIncorrect = "Incorrect"
)

// Revision is a reusable quiz definition. It is owned by exactly one
// identity (user id or session id, never both) and is immutable except
// by delete; deleting a revision cascades to its runs.
type Revision struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Subject              string   `json:"subject"`
	Topics               []string `json:"topics"`
	Description          string   `json:"description,omitempty"` // may embed OCR/PDF-extracted text
	DesiredQuestionCount int      `json:"desiredQuestionCount"`
	AccuracyThreshold    int      `json:"accuracyThreshold"`
	QuestionStyle        string   `json:"questionStyle"`

	// Owner identity, stamped by the store at creation. Exactly one is set.
	UserID    string `json:"-"`
	SessionID string `json:"-"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// Run is one learner's attempt at a Revision. The owning identity is
// copied from the caller at creation, not from the revision, so a run
// never leaks through a shared revision definition.
type Run struct {
	ID         string `json:"id"`
	RevisionID string `json:"revisionId"`
	Status     string `json:"status"`

	UserID    string `json:"-"`
	SessionID string `json:"-"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// Question is one generated question of a run. IDs are derived from the
// run id plus a 1-based ordinal ("<runID>-q3") so they stay unique across
// runs with colliding ordinals. Questions are immutable after creation.
type Question struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Index int    `json:"-"` // zero-based position within the run
	Style string `json:"questionStyle,omitempty"`

	// Multiple-choice only.
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correctAnswerIndex,omitempty"` // -1 for free-text
	Rationale    string   `json:"rationale,omitempty"`
}

// Answer is one marked submission. IsCorrect is derived from Score and is
// never settable independently.
type Answer struct {
	ID            string `json:"-"`
	RunID         string `json:"-"`
	QuestionID    string `json:"questionId"`
	StudentAnswer string `json:"studentAnswer"`
	Score         string `json:"score"`
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
	Error         string `json:"error,omitempty"` // set only on judgment-parse failure

	CreatedAt int64 `json:"-"`
}

// RunSummary is one row of the completed-run history.
type RunSummary struct {
	RunID          string  `json:"runId"`
	RevisionID     string  `json:"revisionId"`
	RevisionName   string  `json:"revisionName"`
	Subject        string  `json:"subject"`
	CompletedAt    int64   `json:"completedAt"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	Threshold      int     `json:"threshold"`
}

// RevisionSummary aggregates every answer of a run.
type RevisionSummary struct {
	RevisionID      string   `json:"revisionId"`
	Questions       []Answer `json:"questions"`
	OverallAccuracy float64  `json:"overallAccuracy"`
}
