package main

import (
	"fmt"
	"strconv"

	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/ui"
	"github.com/spf13/cobra"
)

var stationsCmd = &cobra.Command{
	Use:     "stations",
	Short:   "List stations",
	GroupID: "catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		stations, err := tlClient.ListStations(cmd.Context(), search)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), stations)
		}
		printStations(cmd.OutOrStdout(), stations)
		return nil
	},
}

var stationCmd = &cobra.Command{
	Use:     "station <code|id>",
	Short:   "Show a station by short code or numeric id",
	GroupID: "catalog",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			st  *model.Station
			err error
		)
		if id, perr := strconv.ParseInt(args[0], 10, 64); perr == nil {
			st, err = tlClient.GetStation(cmd.Context(), id)
		} else {
			st, err = tlClient.GetStationByShortName(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), st)
		}
		printStation(cmd.OutOrStdout(), st)
		return nil
	},
}

var linksCmd = &cobra.Command{
	Use:     "links",
	Short:   "List distances between adjacent stations",
	GroupID: "catalog",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var f model.LinkFilter
		f.Network, _ = cmd.Flags().GetString("network")
		f.From, _ = cmd.Flags().GetString("from")
		f.To, _ = cmd.Flags().GetString("to")
		links, err := tlClient.ListLinks(cmd.Context(), f)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), links)
		}
		printLinks(cmd.OutOrStdout(), links)
		return nil
	},
}

var betweenCmd = &cobra.Command{
	Use:     "between <from> <to>",
	Short:   "Show the direct distance between two adjacent stations",
	GroupID: "catalog",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		link, err := tlClient.DistanceBetween(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), link)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s: %s\n",
			ui.RenderStation(args[0]), ui.RenderMuted("↔"), ui.RenderStation(args[1]), ui.RenderDistance(link.Distance))
		return nil
	},
}

func init() {
	stationsCmd.Flags().String("search", "", "match short or long name, case-insensitive")

	linksCmd.Flags().String("network", "", "network name")
	linksCmd.Flags().String("from", "", "parent station code")
	linksCmd.Flags().String("to", "", "child station code")
}
