package main

import (
	"fmt"

	"github.com/alfredjeanlab/trackline/internal/client"
	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/ui"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:     "route <from> <to>",
	Short:   "Compute and record the shortest route between two stations",
	GroupID: "routing",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("tag")
		route, err := tlClient.CreateRoute(cmd.Context(), model.RouteRequest{
			SourceCode:      args[0],
			DestinationCode: args[1],
			AnalyticTag:     tag,
		})
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), route)
		}
		printRoute(cmd.OutOrStdout(), route)
		return nil
	},
}

var routeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded route",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		route, err := tlClient.GetRoute(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), route)
		}
		printRoute(cmd.OutOrStdout(), route)
		return nil
	},
}

var routesCmd = &cobra.Command{
	Use:     "routes",
	Short:   "List recorded routes",
	GroupID: "routing",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		routes, err := tlClient.ListRoutes(cmd.Context(), from, to)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), routes)
		}
		printRouteList(cmd.OutOrStdout(), routes, ui.Width())
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	Short:   "Aggregate recorded distances by analytic tag",
	GroupID: "routing",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req client.StatsRequest
		req.From, _ = cmd.Flags().GetString("from")
		req.To, _ = cmd.Flags().GetString("to")
		req.GroupBy, _ = cmd.Flags().GetString("group-by")
		if _, err := model.ParseGroupBy(req.GroupBy); err != nil {
			return fmt.Errorf("--group-by: %w", err)
		}
		report, err := tlClient.DistanceStats(cmd.Context(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), report)
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	routeCmd.Flags().String("tag", "", "analytic tag recorded with the route (required)")
	_ = routeCmd.MarkFlagRequired("tag")
	routeCmd.AddCommand(routeShowCmd)

	routesCmd.Flags().String("from", "", "first creation date, inclusive (YYYY-MM-DD)")
	routesCmd.Flags().String("to", "", "last creation date, inclusive (YYYY-MM-DD)")

	statsCmd.Flags().String("from", "", "first creation date, inclusive (YYYY-MM-DD)")
	statsCmd.Flags().String("to", "", "last creation date, inclusive (YYYY-MM-DD)")
	statsCmd.Flags().String("group-by", "none", "period bucket: none, day, month or year")
}
