package root

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/revenuemediabot/DailycheckBot2025/internal/gamify"
	"github.com/revenuemediabot/DailycheckBot2025/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show progression and tier health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.coord.GetProgress(ctx, flagUser)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			level := gamify.Level(p.XP)
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Progress — "+flagUser))
			fmt.Fprintln(out, ui.LabelValue("Level", fmt.Sprintf("%d (%s)", level, gamify.LevelTitle(level))))
			fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d (%d to next level)", p.XP, gamify.XPToNext(p.XP))))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%d days", p.Streak)))
			fmt.Fprintln(out, ui.LabelValue("Completed", p.CompletedCount()))
			fmt.Fprintln(out, "")

			if len(p.Achievements) > 0 {
				fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Achievements"))
				ids := make([]string, 0, len(p.Achievements))
				for id := range p.Achievements {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					fmt.Fprintf(out, "- %s %s\n", id, ui.Muted.Render(p.Achievements[id].Format("2006-01-02")))
				}
				fmt.Fprintln(out, "")
			}

			fmt.Fprintln(out, ui.H2.Render("💾 Storage tiers"))
			for _, st := range a.gateway.Statuses() {
				line := fmt.Sprintf("- %s: %s", st.Name, ui.TierState(st.State.String()))
				if st.PendingReplay > 0 {
					line += ui.Muted.Render(fmt.Sprintf(" (%d pending replay)", st.PendingReplay))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	return cmd
}
