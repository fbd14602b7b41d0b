package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/revenuemediabot/DailycheckBot2025/internal/ui"
)

const Version = "4.0.0"

var (
	flagConfig string
	flagUser   string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:           "dailycheck",
	Short:         "DailyCheck — task progression engine",
	Long:          "DailyCheck maintains a catalog of tasks with prerequisites, tracks per-user completions, and derives XP, levels, streaks and achievements over tiered storage.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "local", "user id to act as")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newCompleteCmd(),
		newStatusCmd(),
		newTasksCmd(),
		newResetCmd(),
		newMetricsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
