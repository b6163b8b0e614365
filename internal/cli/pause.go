package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause [reason]",
	Short: "Pause the current session",
	Long: `Pause the scope's active session, closing the running segment. The
optional reason is recorded on the segment.

Examples:
  worktrack pause
  worktrack pause "lunch break"
  worktrack pause meeting --scope project:api`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPause,
}

var pauseScope string

func init() {
	rootCmd.AddCommand(pauseCmd)

	pauseCmd.Flags().StringVarP(&pauseScope, "scope", "s", "global", "Scope partition")
}

func runPause(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	session, err := a.tracker.ActiveSession(ctx, pauseScope)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("no active session in scope %q", pauseScope)
	}

	reason := ""
	if len(args) > 0 {
		reason = args[0]
	}

	session, err = a.tracker.Pause(ctx, session.ID, reason)
	if err != nil {
		return err
	}

	fmt.Println("Session paused")
	printSession(session)
	return nil
}
