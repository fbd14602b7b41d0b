package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/revenuemediabot/DailycheckBot2025/internal/engine"
	"github.com/revenuemediabot/DailycheckBot2025/internal/gamify"
	"github.com/revenuemediabot/DailycheckBot2025/internal/ui"
)

func newCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Complete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.coord.CompleteTask(ctx, flagUser, args[0], time.Now())
			if err != nil {
				var denied *engine.NotEligibleError
				switch {
				case errors.As(err, &denied):
					return fmt.Errorf("%s", denied.Reason)
				case errors.Is(err, engine.ErrUnavailable):
					return errors.New("temporarily unavailable, try again later")
				default:
					return err
				}
			}

			out := cmd.OutOrStdout()
			if res.AlreadyCompleted {
				fmt.Fprintln(out, ui.Muted.Render("already completed, nothing to apply"))
				return nil
			}

			fmt.Fprintf(out, "%s %s (+%d XP)\n", ui.IconDone, args[0], gamify.TotalXP(res.Reward))
			if res.LevelUp {
				fmt.Fprintf(out, "%s %s level %d — %s\n", ui.IconSparkle, ui.BadgeLevelUp, res.LevelAfter, gamify.LevelTitle(res.LevelAfter))
			}
			if res.StreakAfter > 1 {
				fmt.Fprintf(out, "%s streak: %d days\n", ui.IconFire, res.StreakAfter)
			}
			for _, ach := range res.Unlocked {
				fmt.Fprintf(out, "%s %s — %s\n", ui.IconTrophy, ui.Gold.Render(ach.Name), ui.Muted.Render(ach.Description))
			}
			return nil
		},
	}

	return cmd
}
