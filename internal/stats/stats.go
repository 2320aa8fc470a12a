// Package stats aggregates recorded route distances by analytic tag and
// calendar period.
package stats

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// RouteLister is the slice of the store the engine reads from.
type RouteLister interface {
	ListRoutes(ctx context.Context, filter model.RouteFilter) ([]*model.Route, error)
}

// Engine answers distance aggregation queries over recorded routes.
type Engine struct {
	routes RouteLister
}

// NewEngine returns an Engine reading routes from routes.
func NewEngine(routes RouteLister) *Engine {
	return &Engine{routes: routes}
}

// Aggregate sums route distances per tag (and period, unless grouping is
// none) for routes created on a UTC date within [q.From, q.To].
func (e *Engine) Aggregate(ctx context.Context, q model.StatsQuery) ([]model.StatsRow, error) {
	groupBy := q.GroupBy
	if groupBy == "" {
		groupBy = model.GroupByNone
	}
	if !groupBy.IsValid() {
		return nil, fmt.Errorf("invalid groupBy %q", groupBy)
	}

	routes, err := e.routes.ListRoutes(ctx, q.RouteFilter())
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return Aggregate(routes, groupBy), nil
}

type groupKey struct {
	tag    string
	period string
}

// Aggregate groups routes by tag and period label and sums their distances.
// Rows are ordered by tag, then period.
func Aggregate(routes []*model.Route, groupBy model.GroupBy) []model.StatsRow {
	totals := make(map[groupKey]*model.StatsRow)
	for _, r := range routes {
		if r == nil {
			continue
		}
		k := groupKey{tag: r.AnalyticTag, period: PeriodLabel(r.CreatedAt, groupBy)}
		row, ok := totals[k]
		if !ok {
			row = &model.StatsRow{AnalyticTag: k.tag, Period: k.period}
			totals[k] = row
		}
		row.TotalDistance += r.TotalDistance
		row.RouteCount++
	}

	rows := make([]model.StatsRow, 0, len(totals))
	for _, row := range totals {
		row.TotalDistance = model.RoundDistance(row.TotalDistance)
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b model.StatsRow) int {
		return cmp.Or(cmp.Compare(a.AnalyticTag, b.AnalyticTag), cmp.Compare(a.Period, b.Period))
	})
	return rows
}

// PeriodLabel returns the UTC calendar bucket of t: "2006-01-02" by day,
// "2006-01" by month, "2006" by year, and "" when not grouping by time.
func PeriodLabel(t time.Time, groupBy model.GroupBy) string {
	t = t.UTC()
	switch groupBy {
	case model.GroupByDay:
		return t.Format(model.DateLayout)
	case model.GroupByMonth:
		return t.Format("2006-01")
	case model.GroupByYear:
		return t.Format("2006")
	default:
		return ""
	}
}

// Report shapes rows for the distance statistics endpoint. Every item echoes
// the query bounds; Group is nil when q is not grouped by time.
func Report(q model.StatsQuery, rows []model.StatsRow) model.DistanceReport {
	groupBy := cmp.Or(q.GroupBy, model.GroupByNone)
	report := model.DistanceReport{
		From:    model.FormatDate(q.From),
		To:      model.FormatDate(q.To),
		GroupBy: groupBy,
		Items:   make([]model.DistanceReportItem, 0, len(rows)),
	}
	for _, row := range rows {
		item := model.DistanceReportItem{
			AnalyticCode:    row.AnalyticTag,
			TotalDistanceKm: row.TotalDistance,
			PeriodStart:     report.From,
			PeriodEnd:       report.To,
		}
		if groupBy != model.GroupByNone {
			period := row.Period
			item.Group = &period
		}
		report.Items = append(report.Items, item)
	}
	return report
}
