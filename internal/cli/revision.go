package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revisehub/revisehub/internal/identity"
	"github.com/revisehub/revisehub/internal/quiz"
)

var revisionCmd = &cobra.Command{
	Use:   "revision",
	Short: "Manage revision definitions",
}

var (
	revName        string
	revSubject     string
	revTopics      []string
	revDescription string
	revDescFile    string
	revCount       int
	revThreshold   int
	revStyle       string
)

var revisionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new revision definition",
	RunE:  runRevisionCreate,
}

var revisionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your revision definitions",
	RunE:  runRevisionList,
}

var revisionDeleteCmd = &cobra.Command{
	Use:   "delete <revision-id>",
	Short: "Delete a revision and all of its runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runRevisionDelete,
}

func init() {
	revisionCreateCmd.Flags().StringVar(&revName, "name", "", "revision name")
	revisionCreateCmd.Flags().StringVar(&revSubject, "subject", "", "subject area")
	revisionCreateCmd.Flags().StringSliceVar(&revTopics, "topic", nil, "topic (repeatable)")
	revisionCreateCmd.Flags().StringVar(&revDescription, "description", "", "what to study")
	revisionCreateCmd.Flags().StringVar(&revDescFile, "description-file", "", "file with extracted study text (appended to --description)")
	revisionCreateCmd.Flags().IntVar(&revCount, "count", 5, "desired question count per run")
	revisionCreateCmd.Flags().IntVar(&revThreshold, "threshold", 80, "target accuracy percentage")
	revisionCreateCmd.Flags().StringVar(&revStyle, "style", quiz.StyleFreeText, "question style: free-text or multiple-choice")
	_ = revisionCreateCmd.MarkFlagRequired("name")
	_ = revisionCreateCmd.MarkFlagRequired("subject")

	revisionCmd.AddCommand(revisionCreateCmd)
	revisionCmd.AddCommand(revisionListCmd)
	revisionCmd.AddCommand(revisionDeleteCmd)
}

func runRevisionCreate(cmd *cobra.Command, args []string) error {
	a, ctx, err := newApp(cmd)
	if err != nil {
		return err
	}
	if revStyle != quiz.StyleFreeText && revStyle != quiz.StyleMultipleChoice {
		return fmt.Errorf("unknown style %q", revStyle)
	}
	description := revDescription
	if revDescFile != "" {
		extracted, err := readInput(revDescFile)
		if err != nil {
			return err
		}
		if description != "" {
			description += "\n\n"
		}
		description += extracted
	}
	rev, err := a.store.CreateRevision(ctx, identity.ScopeFromContext(ctx), quiz.Revision{
		Name:                 revName,
		Subject:              revSubject,
		Topics:               revTopics,
		Description:          description,
		DesiredQuestionCount: revCount,
		AccuracyThreshold:    revThreshold,
		QuestionStyle:        revStyle,
	})
	if err != nil {
		return err
	}
	return printJSON(rev)
}

func runRevisionList(cmd *cobra.Command, args []string) error {
	a, ctx, err := newApp(cmd)
	if err != nil {
		return err
	}
	revisions, err := a.store.ListRevisions(ctx, identity.ScopeFromContext(ctx))
	if err != nil {
		return err
	}
	return printJSON(revisions)
}

func runRevisionDelete(cmd *cobra.Command, args []string) error {
	a, ctx, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.store.DeleteRevision(ctx, identity.ScopeFromContext(ctx), args[0]); err != nil {
		if errors.Is(err, quiz.ErrSignInRequired) {
			return fmt.Errorf("deleting revisions requires --user")
		}
		return err
	}
	fmt.Printf("deleted revision %s\n", args[0])
	return nil
}
