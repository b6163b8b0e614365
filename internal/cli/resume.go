package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the paused session",
	Long:  `Resume the scope's paused session, opening a fresh segment.`,
	RunE:  runResume,
}

var resumeScope string

func init() {
	rootCmd.AddCommand(resumeCmd)

	resumeCmd.Flags().StringVarP(&resumeScope, "scope", "s", "global", "Scope partition")
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	session, err := a.tracker.ActiveSession(ctx, resumeScope)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("no session to resume in scope %q", resumeScope)
	}

	session, err = a.tracker.Resume(ctx, session.ID)
	if err != nil {
		return err
	}

	fmt.Println("Session resumed")
	printSession(session)
	return nil
}
