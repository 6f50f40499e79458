package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go_ngxmgr/internal/app"
	"go_ngxmgr/internal/health"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe every upstream and run the system checks once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			ctx := cmd.Context()
			report := a.Monitor.CheckSystem(ctx)

			ups, err := a.Store.Upstreams(ctx)
			if err != nil {
				return err
			}
			results := a.Monitor.CheckAll(ctx, ups)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "proxy: %s\nstore: %s\n\n", report.Proxy, report.Store)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSERVER\tSTATUS")
			for _, r := range results {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.UpstreamID, r.Name, r.Server, r.Status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if !report.Healthy || anyUnhealthy(results) {
				return errors.New("health checks failing")
			}
			return nil
		})
	},
}

func anyUnhealthy(results []health.UpstreamResult) bool {
	for _, r := range results {
		if r.Status.State == health.StateUnhealthy {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
