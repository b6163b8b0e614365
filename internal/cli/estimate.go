package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"worktrack/internal/domain"
	"worktrack/internal/estimator"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate how long a task will take",
	Long: `Estimate the duration of a prospective task from completed-session
history. The more similar completed sessions exist, the tighter and more
confident the range.

Examples:
  worktrack estimate
  worktrack estimate --type bugfix
  worktrack estimate --type feature --complexity 4`,
	RunE: runEstimate,
}

var (
	estimateWorkType   string
	estimateComplexity int64
)

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().StringVarP(&estimateWorkType, "type", "t", "", "Work type to compare against")
	estimateCmd.Flags().Int64VarP(&estimateComplexity, "complexity", "c", 0, "Complexity rating 1-5 (matches within ±1)")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if estimateWorkType != "" && !domain.ValidWorkType(estimateWorkType) {
		return &domain.ValidationError{Field: "work_type", Reason: "unknown work type " + estimateWorkType}
	}
	if estimateComplexity != 0 && (estimateComplexity < 1 || estimateComplexity > 5) {
		return &domain.ValidationError{Field: "complexity_rating", Reason: "must be between 1 and 5"}
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	est, err := a.estimator.GetEstimate(ctx, estimator.Options{
		WorkType:         strPtr(estimateWorkType),
		ComplexityRating: int64Ptr(estimateComplexity),
	})
	if err != nil {
		return err
	}

	fmt.Println(est.Message)
	if est.SampleCount > 0 {
		fmt.Printf("\nRange: %s – %s (confidence: %s, %d samples)\n",
			domain.FormatSeconds(est.MinSeconds), domain.FormatSeconds(est.MaxSeconds),
			est.Confidence, est.SampleCount)
	}

	if len(est.SimilarSessions) > 0 {
		fmt.Println("\nSimilar sessions:")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "FEATURE\tDESCRIPTION\tDURATION")
		for _, sim := range est.SimilarSessions {
			fmt.Fprintf(w, "%s\t%s\t%s\n", sim.FeatureID, sim.Description, domain.FormatSeconds(sim.DurationSeconds))
		}
		w.Flush()
	}

	return nil
}
