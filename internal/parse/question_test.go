package parse

import (
	"reflect"
	"strings"
	"testing"

	"github.com/revisehub/revisehub/internal/quiz"
)

func TestMultipleChoice_SingleStructuredBlock(t *testing.T) {
	content := "QUESTION: 2+2?\nA) 3\nB) 4\nC) 5\nD) 6\nCORRECT: B\nRATIONALE: math"

	got := MultipleChoice(content, "r1", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	q := got[0]
	if q.ID != "r1-q1" {
		t.Errorf("id = %q, want r1-q1", q.ID)
	}
	if q.Text != "2+2?" {
		t.Errorf("text = %q", q.Text)
	}
	if !reflect.DeepEqual(q.Options, []string{"3", "4", "5", "6"}) {
		t.Errorf("options = %v", q.Options)
	}
	if q.CorrectIndex != 1 {
		t.Errorf("correct index = %d, want 1", q.CorrectIndex)
	}
	if q.Rationale != "math" {
		t.Errorf("rationale = %q", q.Rationale)
	}
	if q.Style != quiz.StyleMultipleChoice {
		t.Errorf("style = %q", q.Style)
	}
}

func TestMultipleChoice_BlankLinesInsideBlock(t *testing.T) {
	content := "QUESTION: What is 2 + 2?\n\nA) 3\nB) 4\nC) 5\nD) 6\n\nCORRECT: B\n\nRATIONALE: Basic arithmetic.\n\n"

	got := MultipleChoice(content, "r1", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	q := got[0]
	if q.Text != "What is 2 + 2?" {
		t.Errorf("text = %q", q.Text)
	}
	if len(q.Options) != 4 || q.CorrectIndex != 1 {
		t.Errorf("options = %v, correct index = %d", q.Options, q.CorrectIndex)
	}
	if q.Rationale != "Basic arithmetic." {
		t.Errorf("rationale = %q", q.Rationale)
	}
}

func TestMultipleChoice_CorrectLetterBeyondOptions(t *testing.T) {
	content := "QUESTION: 2+2?\nA) 3\nB) 4\nC) 5\nD) 6\nCORRECT: E\nRATIONALE: math"

	if got := MultipleChoice(content, "r1", 10); len(got) != 0 {
		t.Fatalf("expected 0 questions for CORRECT: E, got %d", len(got))
	}
}

func TestMultipleChoice_MultipleBlocks(t *testing.T) {
	content := `QUESTION: What is 2 + 2?
A) 3
B) 4
CORRECT: B
RATIONALE: Two plus two equals four.

QUESTION: What is 3 x 5?
A) 12
B) 15
CORRECT: B`

	got := MultipleChoice(content, "run-2", 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	if got[0].ID != "run-2-q1" || got[1].ID != "run-2-q2" {
		t.Errorf("ids = %q, %q", got[0].ID, got[1].ID)
	}
	// missing rationale falls back to the default, never empty
	if got[1].Rationale != DefaultRationale {
		t.Errorf("rationale = %q, want default", got[1].Rationale)
	}
}

func TestMultipleChoice_DiscardedBlockDoesNotBreakOrdinals(t *testing.T) {
	content := `QUESTION: broken block, no options
CORRECT: A

QUESTION: ok?
A) yes
B) no
CORRECT: a
RATIONALE: lowercase letter still matches`

	got := MultipleChoice(content, "r9", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	// ordinal is assignment order over accepted blocks, so the surviving
	// block is q1
	if got[0].ID != "r9-q1" {
		t.Errorf("id = %q, want r9-q1", got[0].ID)
	}
	if got[0].CorrectIndex != 0 {
		t.Errorf("correct index = %d, want 0", got[0].CorrectIndex)
	}
}

func TestMultipleChoice_MultilineRationale(t *testing.T) {
	content := `QUESTION: capital of France?
A) London
B) Paris
CORRECT: B
RATIONALE: Paris is the capital.
It is located in northern France.`

	got := MultipleChoice(content, "r1", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	if !strings.Contains(got[0].Rationale, "Paris is the capital.") ||
		!strings.Contains(got[0].Rationale, "northern France") {
		t.Errorf("rationale = %q", got[0].Rationale)
	}
}

func TestMultipleChoice_ExplanationKeyword(t *testing.T) {
	content := "QUESTION: 5x5?\nA) 20\nB) 25\nCORRECT: B\nEXPLANATION: Five times five."

	got := MultipleChoice(content, "r1", 10)
	if len(got) != 1 || got[0].Rationale != "Five times five." {
		t.Fatalf("got %+v", got)
	}
}

func TestMultipleChoice_OptionLinesBeyondDIgnored(t *testing.T) {
	content := "QUESTION: pick\nA) a\nB) b\nC) c\nD) d\nE) e\nCORRECT: B"

	got := MultipleChoice(content, "r1", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	if len(got[0].Options) != 4 {
		t.Errorf("options = %v, want only A-D", got[0].Options)
	}
}

func TestMultipleChoice_DesiredCountCaps(t *testing.T) {
	var blocks []string
	for i := 0; i < 5; i++ {
		blocks = append(blocks, "QUESTION: q?\nA) x\nB) y\nCORRECT: A")
	}
	content := strings.Join(blocks, "\n\n")

	if got := MultipleChoice(content, "r1", 3); len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}
}

func TestMultipleChoice_JSONFallback(t *testing.T) {
	content := `[
  {"question": "2+2?", "options": ["3", "4"], "correct": "b", "explanation": "four"},
  {"question": "", "options": ["x"], "correct": "A"},
  {"question": "no options", "options": [], "correct": "A"},
  {"question": "bad letter", "options": ["x", "y"], "correct": "E"}
]`

	got := MultipleChoice(content, "r1", 10)
	if len(got) != 1 {
		t.Fatalf("expected 1 question from JSON fallback, got %d", len(got))
	}
	if got[0].CorrectIndex != 1 {
		t.Errorf("correct index = %d, want 1", got[0].CorrectIndex)
	}
	if got[0].Rationale != "four" {
		t.Errorf("rationale = %q", got[0].Rationale)
	}
}

func TestMultipleChoice_NothingParseable(t *testing.T) {
	if got := MultipleChoice("the model refused to answer", "r1", 10); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestFreeText(t *testing.T) {
	content := "- What is photosynthesis?\n\n* Name the capital of Spain.\nExplain gravity.\n"

	got := FreeText(content, "r7", 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}
	want := []string{"What is photosynthesis?", "Name the capital of Spain.", "Explain gravity."}
	for i, q := range got {
		if q.Text != want[i] {
			t.Errorf("question %d = %q, want %q", i, q.Text, want[i])
		}
		if q.Style != quiz.StyleFreeText || q.CorrectIndex != -1 {
			t.Errorf("question %d not free-text shaped: %+v", i, q)
		}
	}
	if got[2].ID != "r7-q3" {
		t.Errorf("id = %q, want r7-q3", got[2].ID)
	}
}

func TestFreeText_Truncates(t *testing.T) {
	if got := FreeText("a\nb\nc\nd", "r1", 2); len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
}
