package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/revenuemediabot/DailycheckBot2025/internal/ui"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks eligible right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			tasks, err := a.coord.ListEligibleTasks(ctx, flagUser, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("nothing eligible right now"))
				return nil
			}
			fmt.Fprintln(out, ui.Heading(ui.IconTask, "Eligible tasks"))
			for _, t := range tasks {
				fmt.Fprintf(out, "%s %s %s %s [%s, %d XP]\n",
					ui.PeriodIcon(t.Daily, t.Weekly),
					ui.Key.Render(t.ID),
					t.Title,
					ui.Muted.Render(t.Category),
					t.Difficulty, t.XPReward)
			}
			return nil
		},
	}

	return cmd
}
