package root

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newMetricsCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Serve Prometheus metrics while keeping the prober running",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.MetricsAddr
			}
			if addr == "" {
				addr = ":9090"
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", a.mets.Handler())
			fmt.Fprintf(cmd.OutOrStdout(), "serving metrics on %s\n", addr)
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :9090)")
	return cmd
}
