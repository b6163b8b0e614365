package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"worktrack/internal/tracker"
)

var startCmd = &cobra.Command{
	Use:   "start <feature-id>",
	Short: "Start a new work session",
	Long: `Start a new work session for a task.

The session opens in status active with a running segment. Only one session
may be active or paused per scope; start refuses while one exists.

Examples:
  worktrack start AUTH-123 --description "login flow" --type feature
  worktrack start cleanup --scope project:api`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

var (
	startDescription string
	startScope       string
	startWorkType    string
)

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringVarP(&startDescription, "description", "d", "", "What this session works on")
	startCmd.Flags().StringVarP(&startScope, "scope", "s", "global", "Scope partition, e.g. a project identifier")
	startCmd.Flags().StringVarP(&startWorkType, "type", "t", "", "Work type (feature, bugfix, refactor, docs, other)")
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	// The storage layer does not enforce single-active-per-scope; the
	// caller does. Refuse here rather than stack sessions.
	existing, err := a.tracker.ActiveSession(ctx, startScope)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("scope %q already has session %s (%s, %s); pause, complete or abandon it first",
			existing.Scope, existing.ID, existing.FeatureID, existing.Status)
	}

	session, err := a.tracker.Start(ctx, tracker.StartInput{
		FeatureID:   args[0],
		Description: startDescription,
		Scope:       startScope,
		WorkType:    strPtr(startWorkType),
	})
	if err != nil {
		return err
	}

	fmt.Println("Session started")
	printSession(session)
	return nil
}
