package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/trackline/internal/client"
	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/ui"
	"google.golang.org/grpc/status"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printRoute(w io.Writer, r *model.Route) {
	fmt.Fprintf(w, "ID:          %s\n", r.ID)
	fmt.Fprintf(w, "From:        %s\n", ui.RenderStation(r.SourceCode))
	fmt.Fprintf(w, "To:          %s\n", ui.RenderStation(r.DestinationCode))
	fmt.Fprintf(w, "Tag:         %s\n", r.AnalyticTag)
	fmt.Fprintf(w, "Distance:    %s\n", ui.RenderDistance(r.TotalDistance))
	fmt.Fprintf(w, "Path:        %s\n", ui.RenderPath(r.Path))
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created At:  %s\n", r.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
}

// routeListFixedWidth approximates the columns printed before PATH.
const routeListFixedWidth = 80

func printRouteList(w io.Writer, routes []*model.Route, width int) {
	pathWidth := max(width-routeListFixedWidth, 20)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTAG\tDISTANCE\tCREATED\tPATH")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.AnalyticTag,
			formatKm(r.TotalDistance),
			r.CreatedAt.UTC().Format("2006-01-02 15:04"),
			ui.Truncate(strings.Join(r.Path, " "), pathWidth),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d routes\n", len(routes))
}

func printReport(w io.Writer, rep *model.DistanceReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	grouped := rep.GroupBy != model.GroupByNone && rep.GroupBy != ""
	if grouped {
		fmt.Fprintln(tw, "TAG\tGROUP\tPERIOD\tTOTAL")
	} else {
		fmt.Fprintln(tw, "TAG\tTOTAL")
	}
	for _, it := range rep.Items {
		if grouped {
			fmt.Fprintf(tw, "%s\t%s\t%s..%s\t%s\n",
				it.AnalyticCode, deref(it.Group), deref(it.PeriodStart), deref(it.PeriodEnd), formatKm(it.TotalDistanceKm))
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", it.AnalyticCode, formatKm(it.TotalDistanceKm))
		}
	}
	tw.Flush()
	if len(rep.Items) == 0 {
		fmt.Fprintln(w, ui.RenderMuted("no routes in range"))
	}
}

func printStations(w io.Writer, stations []*model.Station) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME")
	for _, st := range stations {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", st.ID, st.ShortName, st.LongName)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d stations\n", len(stations))
}

func printStation(w io.Writer, st *model.Station) {
	fmt.Fprintf(w, "ID:     %d\n", st.ID)
	fmt.Fprintf(w, "Code:   %s\n", ui.RenderStation(st.ShortName))
	fmt.Fprintf(w, "Name:   %s\n", st.LongName)
}

func printLinks(w io.Writer, links []*model.Link) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNETWORK\tPARENT\tCHILD\tDISTANCE")
	for _, l := range links {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", l.ID, l.Network, l.Parent, l.Child, formatKm(l.Distance))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d distances\n", len(links))
}

func formatKm(km float64) string {
	return fmt.Sprintf("%.3f km", km)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// describeError renders server errors from either transport as one line.
func describeError(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.Fields) == 0 {
			return apiErr.Message
		}
		parts := make([]string, len(apiErr.Fields))
		for i, f := range apiErr.Fields {
			parts[i] = f.Field + " " + f.Message
		}
		return "invalid request: " + strings.Join(parts, ", ")
	}
	if st, ok := status.FromError(err); ok {
		return st.Message()
	}
	return err.Error()
}
