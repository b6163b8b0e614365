package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"worktrack/internal/domain"
	"worktrack/internal/ports"
	"worktrack/internal/util"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage sessions",
	Long:  `List and inspect recorded sessions.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	Long: `List recorded sessions, most recently updated first.

Examples:
  worktrack sessions list
  worktrack sessions list --last 20
  worktrack sessions list --scope project:api --status completed`,
	RunE: runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one session with its segments and metrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var (
	sessionsLast   int
	sessionsScope  string
	sessionsStatus string
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)

	sessionsListCmd.Flags().IntVarP(&sessionsLast, "last", "n", 0, "Number of sessions to show")
	sessionsListCmd.Flags().StringVarP(&sessionsScope, "scope", "s", "", "Filter by scope")
	sessionsListCmd.Flags().StringVar(&sessionsStatus, "status", "", "Filter by status (active, paused, completed, abandoned)")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	limit := sessionsLast
	if limit == 0 {
		limit = a.cfg.PageSize
	}

	sessions, err := a.tracker.List(ctx, ports.ListSessionsOptions{
		Scope:  strPtr(sessionsScope),
		Status: strPtr(sessionsStatus),
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFEATURE\tSCOPE\tSTATUS\tACTIVE\tUPDATED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(s.ID),
			s.FeatureID,
			s.Scope,
			s.Status,
			domain.FormatSeconds(s.TotalActiveSeconds),
			util.FormatDateTime(util.FormatTime(s.UpdatedAt)),
		)
	}
	return w.Flush()
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	session, err := a.tracker.Get(ctx, args[0])
	if err != nil {
		return err
	}
	printSession(session)

	segments, err := a.tracker.Segments(ctx, session.ID)
	if err != nil {
		return err
	}
	if len(segments) > 0 {
		fmt.Println("\nSegments:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tENDED\tOPENED BY\tCLOSED BY")
		for _, g := range segments {
			ended, closedBy := "(open)", "-"
			if g.EndedAt != nil {
				ended = util.FormatDateTime(util.FormatTime(*g.EndedAt))
			}
			if g.TriggerEnd != nil {
				closedBy = *g.TriggerEnd
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				util.FormatDateTime(util.FormatTime(g.StartedAt)), ended, g.TriggerStart, closedBy)
		}
		w.Flush()
	}

	metrics, err := a.tracker.Metrics(ctx, session.ID)
	if err != nil {
		return err
	}
	if len(metrics) > 0 {
		fmt.Println("\nMetrics:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RECORDED\tTYPE\tCOMPLEXITY\tFILES\t+\t-")
		for _, m := range metrics {
			workType, complexity := "-", "-"
			if m.WorkType != nil {
				workType = *m.WorkType
			}
			if m.ComplexityRating != nil {
				complexity = fmt.Sprintf("%d", *m.ComplexityRating)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
				util.FormatDateTime(util.FormatTime(m.RecordedAt)), workType, complexity,
				m.FilesTouched, m.LinesAdded, m.LinesRemoved)
		}
		w.Flush()
	}

	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
