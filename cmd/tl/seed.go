package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alfredjeanlab/trackline/internal/catalog"
	"github.com/alfredjeanlab/trackline/internal/events"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed --stations FILE --distances FILE",
	Short: "Load stations and distances into the database",
	Long: `Upserts stations by id and distances by (network, parent, child) in a
single transaction. Files may be JSON or YAML. The database is opened
directly from --database-url (default $TRACKLINE_DATABASE_URL).`,
	GroupID:           "catalog",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		stationsPath, _ := cmd.Flags().GetString("stations")
		distancesPath, _ := cmd.Flags().GetString("distances")
		dbURL, _ := cmd.Flags().GetString("database-url")
		natsURL, _ := cmd.Flags().GetString("nats")
		if dbURL == "" {
			return fmt.Errorf("--database-url or TRACKLINE_DATABASE_URL is required")
		}

		var (
			stations []catalog.StationRecord
			networks []catalog.NetworkRecord
			err      error
		)
		if stationsPath != "" {
			if stations, err = catalog.ReadStationsFile(stationsPath); err != nil {
				return err
			}
		}
		if distancesPath != "" {
			if networks, err = catalog.ReadNetworksFile(distancesPath); err != nil {
				return err
			}
		}
		if len(stations) == 0 && len(networks) == 0 {
			return fmt.Errorf("nothing to seed: pass --stations and/or --distances")
		}

		st, err := openStore(dbURL)
		if err != nil {
			return err
		}
		defer st.Close()

		res, err := catalog.Seed(cmd.Context(), st, stations, networks)
		if err != nil {
			return err
		}

		if natsURL != "" {
			pub, err := events.NewNATSPublisher(natsURL)
			if err != nil {
				slog.Warn("seed event not published", "err", err)
			} else {
				if err := pub.Publish(cmd.Context(), events.TopicCatalogSeeded, events.CatalogSeeded{Stations: res.Stations, Links: res.Links}); err != nil {
					slog.Warn("seed event not published", "err", err)
				}
				pub.Close()
			}
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d stations and %d distances", res.Stations, res.Links)
		if res.Unresolved > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), " (%d endpoints without a station)", res.Unresolved)
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	seedCmd.Flags().String("stations", "", "stations file (JSON or YAML)")
	seedCmd.Flags().String("distances", "", "networks file (JSON or YAML)")
	seedCmd.Flags().String("database-url", os.Getenv("TRACKLINE_DATABASE_URL"), "postgres:// or sqlite:// database URL")
	seedCmd.Flags().String("nats", os.Getenv("TRACKLINE_NATS_URL"), "NATS URL for the catalog seeded event")
}
