package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// timeLayout is fixed-width so that TEXT comparison orders timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const stationColumns = `id, short_name, long_name, created_at, updated_at`

const linkColumns = `id, network, parent_short_name, child_short_name,
	parent_station_id, child_station_id, distance, created_at, updated_at`

const routeColumns = `id, source_code, destination_code, analytic_tag,
	distance_km, path, created_at`

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func whereSQL(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

func queryListStations(ctx context.Context, db executor, filter model.StationFilter) ([]*model.Station, error) {
	var (
		clauses []string
		args    []any
	)
	if search := strings.TrimSpace(filter.Search); search != "" {
		clauses = append(clauses,
			"(instr(lower(short_name), lower(?)) > 0 OR instr(lower(long_name), lower(?)) > 0)")
		args = append(args, search, search)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+stationColumns+" FROM stations"+whereSQL(clauses)+" ORDER BY short_name", args...)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer rows.Close()

	var stations []*model.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stations: %w", err)
		}
		stations = append(stations, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan stations: %w", err)
	}
	return stations, nil
}

func queryGetStation(ctx context.Context, db executor, id int64) (*model.Station, error) {
	return scanStation(db.QueryRowContext(ctx, `SELECT `+stationColumns+` FROM stations WHERE id = ?`, id))
}

func queryGetStationByShortName(ctx context.Context, db executor, shortName string) (*model.Station, error) {
	return scanStation(db.QueryRowContext(ctx, `SELECT `+stationColumns+` FROM stations WHERE short_name = ?`, shortName))
}

func queryUpsertStation(ctx context.Context, db executor, st *model.Station) error {
	now := formatTime(time.Now())
	var row *sql.Row
	if st.ID > 0 {
		row = db.QueryRowContext(ctx, `
			INSERT INTO stations (id, short_name, long_name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				short_name = excluded.short_name,
				long_name = excluded.long_name,
				updated_at = excluded.updated_at
			RETURNING id, created_at, updated_at`,
			st.ID, st.ShortName, st.LongName, now, now,
		)
	} else {
		row = db.QueryRowContext(ctx, `
			INSERT INTO stations (short_name, long_name, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (short_name) DO UPDATE SET
				long_name = excluded.long_name,
				updated_at = excluded.updated_at
			RETURNING id, created_at, updated_at`,
			st.ShortName, st.LongName, now, now,
		)
	}
	return scanStamps(row, &st.ID, &st.CreatedAt, &st.UpdatedAt)
}

func queryListLinks(ctx context.Context, db executor, filter model.LinkFilter) ([]*model.Link, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Network != "" {
		clauses = append(clauses, "network = ?")
		args = append(args, filter.Network)
	}
	if filter.From != "" {
		clauses = append(clauses, "parent_short_name = ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		clauses = append(clauses, "child_short_name = ?")
		args = append(args, filter.To)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+linkColumns+" FROM links"+whereSQL(clauses)+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan links: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan links: %w", err)
	}
	return links, nil
}

func queryGetLink(ctx context.Context, db executor, id int64) (*model.Link, error) {
	return scanLink(db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE id = ?`, id))
}

func queryFindLinkBetween(ctx context.Context, db executor, a, b string) (*model.Link, error) {
	return scanLink(db.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM links
		WHERE (parent_short_name = ? AND child_short_name = ?)
		   OR (parent_short_name = ? AND child_short_name = ?)
		ORDER BY distance, id
		LIMIT 1`,
		a, b, b, a,
	))
}

func queryUpsertLink(ctx context.Context, db executor, l *model.Link) error {
	now := formatTime(time.Now())
	row := db.QueryRowContext(ctx, `
		INSERT INTO links (
			network, parent_short_name, child_short_name,
			parent_station_id, child_station_id, distance, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (network, parent_short_name, child_short_name) DO UPDATE SET
			parent_station_id = excluded.parent_station_id,
			child_station_id = excluded.child_station_id,
			distance = excluded.distance,
			updated_at = excluded.updated_at
		RETURNING id, created_at, updated_at`,
		l.Network, l.Parent, l.Child,
		nullInt64Ptr(l.ParentStationID), nullInt64Ptr(l.ChildStationID),
		l.Distance, now, now,
	)
	return scanStamps(row, &l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func queryCreateRoute(ctx context.Context, db executor, r *model.Route) error {
	path, err := json.Marshal(r.Path)
	if err != nil {
		return fmt.Errorf("encode path: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO routes (
			id, source_code, destination_code, analytic_tag,
			distance_km, path, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SourceCode, r.DestinationCode, r.AnalyticTag,
		r.TotalDistance, string(path), formatTime(r.CreatedAt),
	)
	return err
}

func queryGetRoute(ctx context.Context, db executor, id string) (*model.Route, error) {
	return scanRoute(db.QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ?`, id))
}

func queryListRoutes(ctx context.Context, db executor, filter model.RouteFilter) ([]*model.Route, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.CreatedFrom != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(*filter.CreatedFrom))
	}
	if filter.CreatedBefore != nil {
		clauses = append(clauses, "created_at < ?")
		args = append(args, formatTime(*filter.CreatedBefore))
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+routeColumns+" FROM routes"+whereSQL(clauses)+" ORDER BY created_at, id", args...)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []*model.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routes: %w", err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan routes: %w", err)
	}
	return routes, nil
}
