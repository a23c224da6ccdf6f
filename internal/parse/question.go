// Package parse turns raw generative-model output into validated domain
// objects. Model text is untrusted: malformed JSON, markdown fences, wrong
// letter casing, missing fields and extra options all have to degrade into
// fewer results, never into a panic or an error for recoverable noise.
package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/revisehub/revisehub/internal/quiz"
)

// DefaultRationale fills in when the model omits one.
const DefaultRationale = "Correct answer selected."

// questionFormat attempts to parse the whole output in one format.
// ok=false means the format did not match and the next one is tried;
// the first format that matches wins for the entire input.
type questionFormat interface {
	parse(raw, runID string, limit int) (qs []quiz.Question, ok bool)
}

var multipleChoiceFormats = []questionFormat{structuredFormat{}, jsonArrayFormat{}}

// MultipleChoice parses model output into at most limit multiple-choice
// questions. It never fails: unparseable input yields an empty slice and
// malformed blocks are dropped individually.
func MultipleChoice(raw, runID string, limit int) []quiz.Question {
	for _, f := range multipleChoiceFormats {
		if qs, ok := f.parse(raw, runID, limit); ok {
			return qs
		}
	}
	return nil
}

// FreeText parses line-oriented output: each non-empty line, minus leading
// bullet markers, becomes one question, truncated to limit.
func FreeText(raw, runID string, limit int) []quiz.Question {
	var out []quiz.Question
	for _, ln := range strings.Split(raw, "\n") {
		ln = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(ln), "-*• "))
		if ln == "" {
			continue
		}
		out = append(out, quiz.Question{
			ID:           questionID(runID, len(out)+1),
			Text:         ln,
			Index:        len(out),
			Style:        quiz.StyleFreeText,
			CorrectIndex: -1,
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}

func questionID(runID string, ordinal int) string {
	return fmt.Sprintf("%s-q%d", runID, ordinal)
}

// --- Structured text format (primary) ---
//
//	QUESTION: What is 2 + 2?
//	A) 3
//	B) 4
//	CORRECT: B
//	RATIONALE: Two plus two equals four.
//
// A block runs from one QUESTION: line to the next; blank lines inside a
// block are tolerated. Option lines beyond D are ignored. A block missing
// its question, options or a CORRECT letter that matches a parsed option
// is discarded, not fatal.

type structuredFormat struct{}

var optionLine = regexp.MustCompile(`^([A-D])\)\s*(.*)$`)

func (structuredFormat) parse(raw, runID string, limit int) ([]quiz.Question, bool) {
	var out []quiz.Question
	var pending []string
	flush := func() {
		defer func() { pending = nil }()
		if len(pending) == 0 || len(out) >= limit {
			return
		}
		if q, ok := parseBlock(strings.Join(pending, "\n")); ok {
			q.ID = questionID(runID, len(out)+1)
			q.Index = len(out)
			out = append(out, q)
		}
	}
	for _, ln := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(ln), "QUESTION:") {
			flush()
		}
		pending = append(pending, ln)
	}
	flush()
	return out, len(out) > 0
}

func parseBlock(block string) (quiz.Question, bool) {
	var (
		text          string
		letters       []string
		options       []string
		correctLetter string
		rationale     []string
		inRationale   bool
	)
	for _, ln := range strings.Split(block, "\n") {
		ln = strings.TrimSpace(ln)
		switch {
		case strings.HasPrefix(ln, "QUESTION:"):
			inRationale = false
			if text == "" {
				text = strings.TrimSpace(strings.TrimPrefix(ln, "QUESTION:"))
			}
		case optionLine.MatchString(ln):
			inRationale = false
			m := optionLine.FindStringSubmatch(ln)
			letters = append(letters, m[1])
			options = append(options, strings.TrimSpace(m[2]))
		case strings.HasPrefix(ln, "CORRECT:"):
			inRationale = false
			correctLetter = strings.TrimRight(strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(ln, "CORRECT:"))), ").")
		case strings.HasPrefix(ln, "RATIONALE:"):
			inRationale = true
			if s := strings.TrimSpace(strings.TrimPrefix(ln, "RATIONALE:")); s != "" {
				rationale = append(rationale, s)
			}
		case strings.HasPrefix(ln, "EXPLANATION:"):
			inRationale = true
			if s := strings.TrimSpace(strings.TrimPrefix(ln, "EXPLANATION:")); s != "" {
				rationale = append(rationale, s)
			}
		case inRationale && ln != "":
			rationale = append(rationale, ln)
		}
	}
	if text == "" || len(options) == 0 || correctLetter == "" {
		return quiz.Question{}, false
	}
	correctIdx := -1
	for i, l := range letters {
		if l == correctLetter {
			correctIdx = i
			break
		}
	}
	if correctIdx < 0 {
		// CORRECT names a letter that was never parsed as an option
		// (e.g. "CORRECT: E" when only A–D exist).
		return quiz.Question{}, false
	}
	r := strings.Join(rationale, "\n")
	if r == "" {
		r = DefaultRationale
	}
	return quiz.Question{
		Text:         text,
		Style:        quiz.StyleMultipleChoice,
		Options:      options,
		CorrectIndex: correctIdx,
		Rationale:    r,
	}, true
}

// --- JSON array fallback ---

type jsonArrayFormat struct{}

type jsonQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Rationale   string   `json:"rationale"`
	Explanation string   `json:"explanation"`
}

func (jsonArrayFormat) parse(raw, runID string, limit int) ([]quiz.Question, bool) {
	var items []jsonQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &items); err != nil {
		return nil, false
	}
	var out []quiz.Question
	for _, it := range items {
		if len(out) >= limit {
			break
		}
		if it.Question == "" || len(it.Options) == 0 {
			continue
		}
		letter := strings.ToUpper(strings.TrimSpace(it.Correct))
		if len(letter) == 0 || letter[0] < 'A' || letter[0] > 'D' {
			continue
		}
		idx := int(letter[0] - 'A')
		if idx >= len(it.Options) {
			continue
		}
		r := strings.TrimSpace(it.Rationale)
		if r == "" {
			r = strings.TrimSpace(it.Explanation)
		}
		if r == "" {
			r = DefaultRationale
		}
		out = append(out, quiz.Question{
			ID:           questionID(runID, len(out)+1),
			Text:         it.Question,
			Index:        len(out),
			Style:        quiz.StyleMultipleChoice,
			Options:      it.Options,
			CorrectIndex: idx,
			Rationale:    r,
		})
	}
	return out, true
}
