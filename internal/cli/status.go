package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"worktrack/internal/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the scope's current session",
	Long: `Show the active or paused session for a scope, including live elapsed
time (the stored total plus the running segment).`,
	RunE: runStatus,
}

var statusScope string

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusScope, "scope", "s", "global", "Scope partition")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	session, err := a.tracker.ActiveSession(ctx, statusScope)
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Printf("No active session in scope %q\n", statusScope)
		return nil
	}

	printSession(session)

	live, err := a.tracker.LiveActiveSeconds(ctx, session)
	if err != nil {
		return err
	}
	if live != session.TotalActiveSeconds {
		fmt.Printf("Elapsed now: %s\n", domain.FormatSeconds(live))
	}
	return nil
}
