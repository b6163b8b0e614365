package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var abandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Abandon the current session",
	Long: `Abandon the scope's session without treating it as done. Active time
accumulated so far is kept, but the session is excluded from estimates.`,
	RunE: runAbandon,
}

var (
	abandonScope string
	abandonNotes string
)

func init() {
	rootCmd.AddCommand(abandonCmd)

	abandonCmd.Flags().StringVarP(&abandonScope, "scope", "s", "global", "Scope partition")
	abandonCmd.Flags().StringVar(&abandonNotes, "notes", "", "Why the session was abandoned")
}

func runAbandon(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	session, err := a.tracker.ActiveSession(ctx, abandonScope)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("no session to abandon in scope %q", abandonScope)
	}

	session, err = a.tracker.Abandon(ctx, session.ID, strPtr(abandonNotes))
	if err != nil {
		return err
	}

	fmt.Println("Session abandoned")
	printSession(session)
	return nil
}
