package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/trackline/internal/model"
	"github.com/alfredjeanlab/trackline/internal/ui"
)

func strp(s string) *string { return &s }

func TestPrintReport(t *testing.T) {
	ui.SetColor(false)
	t.Cleanup(func() { ui.SetColor(true) })

	tests := []struct {
		name string
		rep  *model.DistanceReport
		want []string
	}{
		{
			name: "ungrouped",
			rep: &model.DistanceReport{GroupBy: model.GroupByNone, Items: []model.DistanceReportItem{
				{AnalyticCode: "t1", TotalDistanceKm: 17.5},
			}},
			want: []string{"TAG", "t1", "17.500 km"},
		},
		{
			name: "by month",
			rep: &model.DistanceReport{GroupBy: model.GroupByMonth, Items: []model.DistanceReportItem{
				{AnalyticCode: "t1", TotalDistanceKm: 3, PeriodStart: strp("2024-05-01"), PeriodEnd: strp("2024-05-31"), Group: strp("2024-05")},
			}},
			want: []string{"GROUP", "2024-05", "2024-05-01..2024-05-31", "3.000 km"},
		},
		{
			name: "empty",
			rep:  &model.DistanceReport{GroupBy: model.GroupByNone, Items: []model.DistanceReportItem{}},
			want: []string{"no routes in range"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printReport(&buf, tt.rep)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestPrintLinksAndStations(t *testing.T) {
	var buf bytes.Buffer
	printLinks(&buf, []*model.Link{{ID: 3, Network: "main", Parent: "A", Child: "B", Distance: 10.25}})
	if !strings.Contains(buf.String(), "10.250 km") || !strings.Contains(buf.String(), "1 distances") {
		t.Errorf("printLinks output:\n%s", buf.String())
	}

	buf.Reset()
	printStations(&buf, []*model.Station{{ID: 1, ShortName: "MX", LongName: "Montreux"}})
	if !strings.Contains(buf.String(), "Montreux") || !strings.Contains(buf.String(), "1 stations") {
		t.Errorf("printStations output:\n%s", buf.String())
	}
}

func TestFormatRouteLine(t *testing.T) {
	ui.SetColor(false)
	t.Cleanup(func() { ui.SetColor(true) })

	r := &model.Route{
		ID:            "rt-abc",
		AnalyticTag:   "ops",
		TotalDistance: 7,
		Path:          []string{"A", "D", "C"},
		CreatedAt:     time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	want := "09:30:00  A → D → C  7 km  ops  rt-abc"
	if got := formatRouteLine(r); got != want {
		t.Errorf("formatRouteLine() = %q, want %q", got, want)
	}
}

func TestPrintRouteList_TruncatesPath(t *testing.T) {
	path := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		path = append(path, "ST")
	}
	var buf bytes.Buffer
	printRouteList(&buf, []*model.Route{{ID: "rt-1", AnalyticTag: "long", TotalDistance: 1, Path: path}}, 100)
	out := buf.String()
	if !strings.Contains(out, "ST ST ST ST ST ST...") {
		t.Errorf("path not truncated to 20 columns:\n%s", out)
	}
	if !strings.Contains(out, "1 routes") {
		t.Errorf("missing count:\n%s", out)
	}
}
