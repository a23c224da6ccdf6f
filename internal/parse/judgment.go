package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/revisehub/revisehub/internal/quiz"
)

// Judgment is a validated marking result for one answer.
type Judgment struct {
	Score         string
	IsCorrect     bool
	CorrectAnswer string
	Explanation   string
}

// ErrNoJudgment is returned when no JSON object can be recovered from the
// model output. It is the only failure this parser surfaces; everything
// else is defaulted.
var ErrNoJudgment = errors.New("no judgment object found in model output")

// ParseJudgment extracts a judgment from raw model output. Recovery steps,
// each a fallback for the previous: strip a markdown code fence, parse the
// whole text as a JSON object, then parse the first balanced-brace
// substring. Only total failure returns an error.
func ParseJudgment(raw string) (Judgment, error) {
	s := stripFence(strings.TrimSpace(raw))

	obj, err := decodeObject(s)
	if err != nil {
		sub, ok := firstBalancedObject(s)
		if !ok {
			return Judgment{}, ErrNoJudgment
		}
		if obj, err = decodeObject(sub); err != nil {
			return Judgment{}, ErrNoJudgment
		}
	}

	score, _ := obj["score"].(string)
	switch score {
	case quiz.ScoreFull, quiz.ScorePartial, quiz.ScoreIncorrect:
	default:
		// Legacy payloads carry only a boolean. The inference can never
		// produce Partial Marks: the boolean has no partial analogue.
		if b, ok := obj["is_correct"].(bool); ok && b {
			score = quiz.ScoreFull
		} else {
			score = quiz.ScoreIncorrect
		}
	}

	correct := asString(obj["correct_answer"])
	expl := strings.TrimSpace(asString(obj["explanation"]))
	if expl == "" {
		expl = synthesizeExplanation(score, correct)
	}
	return Judgment{
		Score:         score,
		IsCorrect:     score == quiz.ScoreFull, // always derived, never trusted from the payload
		CorrectAnswer: correct,
		Explanation:   expl,
	}, nil
}

// Answer turns a judgment into a stored answer row.
func (j Judgment) Answer(questionID, studentAnswer string) quiz.Answer {
	return quiz.Answer{
		QuestionID:    questionID,
		StudentAnswer: studentAnswer,
		Score:         j.Score,
		IsCorrect:     j.IsCorrect,
		CorrectAnswer: j.CorrectAnswer,
		Explanation:   j.Explanation,
	}
}

// FailureAnswer records an unparseable marking result as an explicit error
// value: score forced to Incorrect, error populated, explanation left empty.
func FailureAnswer(questionID, studentAnswer string, err error) quiz.Answer {
	return quiz.Answer{
		QuestionID:    questionID,
		StudentAnswer: studentAnswer,
		Score:         quiz.ScoreIncorrect,
		IsCorrect:     false,
		Error:         err.Error(),
	}
}

func synthesizeExplanation(score, correct string) string {
	switch score {
	case quiz.ScoreFull:
		return "Your answer is completely correct. Well done!"
	case quiz.ScorePartial:
		return fmt.Sprintf("Your answer is partially correct. The complete answer is: %s.", correct)
	default:
		return fmt.Sprintf("The correct answer is: %s. Please review the question and try again.", correct)
	}
}

// stripFence drops the first and last line when the text opens with a
// markdown code fence (```json ... ``` or ``` ... ```).
func stripFence(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) < 2 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		return s
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}

func decodeObject(s string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// firstBalancedObject scans for the first balanced-brace substring.
// The scan is bounded: more than one level of nesting aborts it.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
			if depth > 2 {
				return "", false
			}
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
