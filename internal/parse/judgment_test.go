package parse

import (
	"strings"
	"testing"

	"github.com/revisehub/revisehub/internal/quiz"
)

func TestParseJudgment_DirectJSON(t *testing.T) {
	j, err := ParseJudgment(`{"score":"Partial Marks","correct_answer":"Paris","explanation":"Half right."}`)
	if err != nil {
		t.Fatal(err)
	}
	if j.Score != quiz.ScorePartial {
		t.Errorf("score = %q", j.Score)
	}
	if j.IsCorrect {
		t.Error("Partial Marks must never be correct")
	}
	if j.Explanation != "Half right." {
		t.Errorf("explanation = %q", j.Explanation)
	}
}

func TestParseJudgment_FencedJSON(t *testing.T) {
	raw := "```json\n{\"score\":\"Full Marks\",\"is_correct\":true,\"correct_answer\":\"4\",\"explanation\":\"\"}\n```"

	j, err := ParseJudgment(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !j.IsCorrect || j.Score != quiz.ScoreFull {
		t.Errorf("judgment = %+v", j)
	}
	// blank explanation is synthesized from the score tier
	if !strings.Contains(j.Explanation, "completely correct") {
		t.Errorf("explanation = %q, want synthesized full-marks message", j.Explanation)
	}
}

func TestParseJudgment_BareFence(t *testing.T) {
	raw := "```\n{\"score\":\"Incorrect\",\"correct_answer\":\"42\"}\n```"

	j, err := ParseJudgment(raw)
	if err != nil {
		t.Fatal(err)
	}
	if j.Score != quiz.ScoreIncorrect || j.IsCorrect {
		t.Errorf("judgment = %+v", j)
	}
	if !strings.Contains(j.Explanation, "The correct answer is: 42.") {
		t.Errorf("explanation = %q", j.Explanation)
	}
}

func TestParseJudgment_BraceScanRecoversEmbeddedObject(t *testing.T) {
	raw := `Sure! Here is the marking result you asked for:
{"score":"Full Marks","correct_answer":"4","explanation":"Spot on."}
Let me know if you need anything else.`

	j, err := ParseJudgment(raw)
	if err != nil {
		t.Fatal(err)
	}
	if j.Score != quiz.ScoreFull || j.Explanation != "Spot on." {
		t.Errorf("judgment = %+v", j)
	}
}

func TestParseJudgment_ScoreOverridesLegacyBoolean(t *testing.T) {
	// is_correct=true in the same payload must not win over the tier
	j, err := ParseJudgment(`{"score":"Partial Marks","is_correct":true,"correct_answer":"x"}`)
	if err != nil {
		t.Fatal(err)
	}
	if j.IsCorrect {
		t.Error("isCorrect must derive from score, not the raw is_correct field")
	}
}

func TestParseJudgment_LegacyBooleanInference(t *testing.T) {
	// The inference path never produces Partial Marks, only Full or Incorrect.
	j, err := ParseJudgment(`{"is_correct":true,"correct_answer":"4"}`)
	if err != nil {
		t.Fatal(err)
	}
	if j.Score != quiz.ScoreFull || !j.IsCorrect {
		t.Errorf("judgment = %+v", j)
	}

	j, err = ParseJudgment(`{"is_correct":false}`)
	if err != nil {
		t.Fatal(err)
	}
	if j.Score != quiz.ScoreIncorrect {
		t.Errorf("score = %q", j.Score)
	}

	j, err = ParseJudgment(`{"score":"full marks"}`) // wrong case: tier match is exact
	if err != nil {
		t.Fatal(err)
	}
	if j.Score != quiz.ScoreIncorrect {
		t.Errorf("score = %q, want Incorrect for unrecognized tier", j.Score)
	}
}

func TestParseJudgment_MissingCorrectAnswerDefaultsEmpty(t *testing.T) {
	j, err := ParseJudgment(`{"score":"Incorrect"}`)
	if err != nil {
		t.Fatal(err)
	}
	if j.CorrectAnswer != "" {
		t.Errorf("correct answer = %q, want empty", j.CorrectAnswer)
	}
}

func TestParseJudgment_TotalFailure(t *testing.T) {
	for _, raw := range []string{
		"I cannot grade this answer.",
		"{broken json",
		"",
	} {
		if _, err := ParseJudgment(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestFailureAnswer(t *testing.T) {
	a := FailureAnswer("r1-q1", "my answer", ErrNoJudgment)
	if a.Score != quiz.ScoreIncorrect || a.IsCorrect {
		t.Errorf("answer = %+v", a)
	}
	if a.Error == "" {
		t.Error("error marker must be populated")
	}
	if a.Explanation != "" {
		t.Errorf("explanation = %q, want empty on parse failure", a.Explanation)
	}
}

func TestJudgmentAnswer(t *testing.T) {
	j := Judgment{Score: quiz.ScoreFull, IsCorrect: true, CorrectAnswer: "4", Explanation: "yes"}
	a := j.Answer("r1-q2", "4")
	if a.QuestionID != "r1-q2" || a.StudentAnswer != "4" || !a.IsCorrect || a.Error != "" {
		t.Errorf("answer = %+v", a)
	}
}
