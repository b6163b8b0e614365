package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "worktrack",
	Short: "Track developer work sessions and estimate task duration",
	Long: `worktrack records work sessions with accurate active-time accounting
across pause/resume cycles, and forecasts how long a new task will take
from your own session history.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
