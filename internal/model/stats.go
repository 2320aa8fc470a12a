package model

import (
	"fmt"
	"time"
)

// GroupBy selects the calendar bucket used when aggregating route distances.
type GroupBy string

const (
	GroupByNone  GroupBy = "none"
	GroupByDay   GroupBy = "day"
	GroupByMonth GroupBy = "month"
	GroupByYear  GroupBy = "year"
)

// String returns the string representation of the grouping.
func (g GroupBy) String() string {
	return string(g)
}

// IsValid checks whether the grouping is a known value.
func (g GroupBy) IsValid() bool {
	switch g {
	case GroupByNone, GroupByDay, GroupByMonth, GroupByYear:
		return true
	}
	return false
}

// ParseGroupBy converts a query value into a GroupBy. An empty value means
// GroupByNone.
func ParseGroupBy(s string) (GroupBy, error) {
	if s == "" {
		return GroupByNone, nil
	}
	g := GroupBy(s)
	if !g.IsValid() {
		return "", fmt.Errorf("groupBy must be one of none, day, month, year")
	}
	return g, nil
}

// DateLayout is the layout of date-only query parameters and day labels.
const DateLayout = "2006-01-02"

// StatsQuery is the input to the aggregation engine. From and To are
// calendar dates (UTC midnight) and both are inclusive.
type StatsQuery struct {
	From    *time.Time
	To      *time.Time
	GroupBy GroupBy
}

// RouteFilter converts the inclusive date range into creation-time bounds.
func (q StatsQuery) RouteFilter() RouteFilter {
	var f RouteFilter
	if q.From != nil {
		from := truncateDay(*q.From)
		f.CreatedFrom = &from
	}
	if q.To != nil {
		before := truncateDay(*q.To).AddDate(0, 0, 1)
		f.CreatedBefore = &before
	}
	return f
}

// StatsRow is one aggregated (tag, period) total. Period is empty when the
// query is not grouped by time.
type StatsRow struct {
	AnalyticTag   string  `json:"analyticTag"`
	Period        string  `json:"period,omitempty"`
	TotalDistance float64 `json:"totalDistance"`
	RouteCount    int     `json:"routeCount"`
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value as UTC midnight. An empty value is nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

// ParseStatsQuery builds a StatsQuery from raw query values.
func ParseStatsQuery(from, to, groupBy string) (StatsQuery, error) {
	var q StatsQuery
	var err error
	if q.From, err = ParseDate(from); err != nil {
		return StatsQuery{}, fmt.Errorf("from: %w", err)
	}
	if q.To, err = ParseDate(to); err != nil {
		return StatsQuery{}, fmt.Errorf("to: %w", err)
	}
	if q.GroupBy, err = ParseGroupBy(groupBy); err != nil {
		return StatsQuery{}, err
	}
	return q, nil
}

// DistanceReport is the answer to a distance aggregation query. From and To
// echo the requested bounds and are nil when open.
type DistanceReport struct {
	From    *string              `json:"from"`
	To      *string              `json:"to"`
	GroupBy GroupBy              `json:"groupBy"`
	Items   []DistanceReportItem `json:"items"`
}

// DistanceReportItem is one row of a DistanceReport. Group holds the period
// label and is nil when the report is not grouped by time.
type DistanceReportItem struct {
	AnalyticCode    string  `json:"analyticCode"`
	TotalDistanceKm float64 `json:"totalDistanceKm"`
	PeriodStart     *string `json:"periodStart"`
	PeriodEnd       *string `json:"periodEnd"`
	Group           *string `json:"group"`
}

// FormatDate renders t as YYYY-MM-DD, or nil when t is nil.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(DateLayout)
	return &s
}
