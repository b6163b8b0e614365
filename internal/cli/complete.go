package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"worktrack/internal/tracker"
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete the current session",
	Long: `Complete the scope's session, closing any running segment and recording
the final active time. Optionally records satisfaction, notes and a metrics
row for future estimates.

Examples:
  worktrack complete --satisfaction 4 --notes "shipped"
  worktrack complete --type bugfix --complexity 2 --files 3 --added 40 --removed 12`,
	RunE: runComplete,
}

var (
	completeScope        string
	completeSatisfaction int64
	completeNotes        string
	completeWorkType     string
	completeComplexity   int64
	completeFiles        int64
	completeAdded        int64
	completeRemoved      int64
)

func init() {
	rootCmd.AddCommand(completeCmd)

	completeCmd.Flags().StringVarP(&completeScope, "scope", "s", "global", "Scope partition")
	completeCmd.Flags().Int64Var(&completeSatisfaction, "satisfaction", 0, "Satisfaction rating 1-5")
	completeCmd.Flags().StringVar(&completeNotes, "notes", "", "Free-form completion notes")
	completeCmd.Flags().StringVarP(&completeWorkType, "type", "t", "", "Work type (feature, bugfix, refactor, docs, other)")
	completeCmd.Flags().Int64Var(&completeComplexity, "complexity", 0, "Complexity rating 1-5")
	completeCmd.Flags().Int64Var(&completeFiles, "files", 0, "Files touched")
	completeCmd.Flags().Int64Var(&completeAdded, "added", 0, "Lines added")
	completeCmd.Flags().Int64Var(&completeRemoved, "removed", 0, "Lines removed")
}

func runComplete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	session, err := a.tracker.ActiveSession(ctx, completeScope)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("no session to complete in scope %q", completeScope)
	}

	in := tracker.CompleteInput{
		Satisfaction: int64Ptr(completeSatisfaction),
		Notes:        strPtr(completeNotes),
	}
	if completeWorkType != "" {
		in.Metrics = &tracker.MetricsInput{
			FilesTouched:     completeFiles,
			LinesAdded:       completeAdded,
			LinesRemoved:     completeRemoved,
			ComplexityRating: int64Ptr(completeComplexity),
			WorkType:         strPtr(completeWorkType),
		}
	}

	session, err = a.tracker.Complete(ctx, session.ID, in)
	if err != nil {
		return err
	}

	fmt.Println("Session completed")
	printSession(session)
	return nil
}
