package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revisehub/revisehub/internal/identity"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List your completed runs (requires --user)",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, ctx, err := newApp(cmd)
	if err != nil {
		return err
	}
	scope := identity.ScopeFromContext(ctx)
	summaries, err := a.store.ListCompletedRuns(ctx, scope)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		if !scope.Authenticated() {
			fmt.Println("no history: completed-run history needs a signed-in user")
		} else {
			fmt.Println("no completed runs yet")
		}
		return nil
	}
	return printJSON(summaries)
}
