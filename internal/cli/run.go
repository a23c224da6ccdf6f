package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/revisehub/revisehub/internal/identity"
	"github.com/revisehub/revisehub/internal/parse"
	"github.com/revisehub/revisehub/internal/quiz"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start runs, answer questions and view summaries",
}

var (
	questionsFile string
	answerText    string
	judgmentFile  string
)

var runStartCmd = &cobra.Command{
	Use:   "start <revision-id>",
	Short: "Start a run, parsing its questions from saved model output",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

var runNextCmd = &cobra.Command{
	Use:   "next <run-id>",
	Short: "Show the next unanswered question",
	Args:  cobra.ExactArgs(1),
	RunE:  runNext,
}

var runAnswerCmd = &cobra.Command{
	Use:   "answer <run-id> <question-id>",
	Short: "Record an answer together with its saved marking output",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnswer,
}

var runSummaryCmd = &cobra.Command{
	Use:   "summary <run-id>",
	Short: "Summarise every marked answer of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	runStartCmd.Flags().StringVar(&questionsFile, "from", "-", "model output file with generated questions (- for stdin)")
	runAnswerCmd.Flags().StringVar(&answerText, "answer", "", "the learner's answer")
	runAnswerCmd.Flags().StringVar(&judgmentFile, "judgment", "-", "model output file with the marking judgment (- for stdin)")
	_ = runAnswerCmd.MarkFlagRequired("answer")

	runCmd.AddCommand(runStartCmd)
	runCmd.AddCommand(runNextCmd)
	runCmd.AddCommand(runAnswerCmd)
	runCmd.AddCommand(runSummaryCmd)
}

// fallbackQuestions substitutes when nothing parseable came back from the
// model. Deterministic on purpose.
func fallbackQuestions(runID string) []quiz.Question {
	return []quiz.Question{
		{ID: runID + "-q1", Text: "What is 2 + 2?", Index: 0, Style: quiz.StyleFreeText, CorrectIndex: -1},
		{ID: runID + "-q2", Text: "What is 3 × 5?", Index: 1, Style: quiz.StyleFreeText, CorrectIndex: -1},
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	a, ctx, err := newApp(cmd)
	if err != nil {
		return err
	}
	scope := identity.ScopeFromContext(ctx)
	rev, err := a.store.GetRevision(ctx, scope, args[0])
	if err != nil {
		return err
	}
	raw, err := readInput(questionsFile)
	if err != nil {
		return err
	}

	run, err := a.store.CreateRun(ctx, scope, rev.ID)
	if err != nil {
		return err
	}

	var questions []quiz.Question
	if rev.QuestionStyle == quiz.StyleMultipleChoice {
		questions = parse.MultipleChoice(raw, run.ID, rev.DesiredQuestionCount)
	} else {
		questions = parse.FreeText(raw, run.ID, rev.DesiredQuestionCount)
	}
	if len(questions) == 0 {
		log.Printf("no parseable questions in %s; using fallback questions", questionsFile)
		questions = fallbackQuestions(run.ID)
	}
	if err := a.store.ReplaceQuestions(ctx, scope, run.ID, questions); err != nil {
		return err
	}
	fmt.Printf("run %s started with %d questions\n", run.ID, len(questions))
	return printJSON(run)
}

func runNext(cmd *cobra.Command, args []string) error {
	a, ctx, err := newApp(cmd)
	if err != nil {
		return err
	}
	q, ok, err := quiz.NextQuestion(ctx, a.store, identity.ScopeFromContext(ctx), args[0])
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("run complete: every question has an answer")
		return nil
	}
	return printJSON(q)
}

func runAnswer(cmd *cobra.Command, args []string) error {
	a, ctx, err := newApp(cmd)
	if err != nil {
		return err
	}
	runID, questionID := args[0], args[1]
	raw, err := readInput(judgmentFile)
	if err != nil {
		return err
	}

	var answer quiz.Answer
	judgment, err := parse.ParseJudgment(raw)
	if err != nil {
		// The one failure the parser surfaces; record it as an explicit
		// error judgment rather than dropping the submission.
		answer = parse.FailureAnswer(questionID, answerText, err)
	} else {
		answer = judgment.Answer(questionID, answerText)
	}

	stored, err := a.store.StoreAnswer(ctx, identity.ScopeFromContext(ctx), runID, answer)
	if err != nil {
		return err
	}
	return printJSON(stored)
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, ctx, err := newApp(cmd)
	if err != nil {
		return err
	}
	scope := identity.ScopeFromContext(ctx)
	run, err := a.store.GetRun(ctx, scope, args[0])
	if err != nil {
		return err
	}
	answers, err := a.store.GetAnswers(ctx, scope, run.ID)
	if err != nil {
		return err
	}
	return printJSON(quiz.Summarize(run.RevisionID, answers))
}
