package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the trackline service",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := tlClient.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := printJSON(out, resp); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "Health: %s\n", resp.Status)
			if s := resp.Sync; s != nil && !s.LastRun.IsZero() {
				fmt.Fprintf(out, "Last sync: %s (%d bytes)\n", s.LastRun.UTC().Format("2006-01-02 15:04:05"), s.Bytes)
				if s.LastError != "" {
					fmt.Fprintf(out, "Sync error: %s\n", s.LastError)
				}
			}
		}

		if resp.Status != "ok" {
			return fmt.Errorf("unhealthy: %s", resp.Status)
		}
		return nil
	},
}
