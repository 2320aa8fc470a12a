package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/trackline/internal/model"
)

const stationColumns = `id, short_name, long_name, created_at, updated_at`

const linkColumns = `id, network, parent_short_name, child_short_name,
	parent_station_id, child_station_id, distance, created_at, updated_at`

const routeColumns = `id, source_code, destination_code, analytic_tag,
	distance_km, path, created_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// argList numbers positional placeholders while a WHERE clause is built.
type argList struct {
	args []any
}

func (a *argList) next(v any) string {
	a.args = append(a.args, v)
	return fmt.Sprintf("$%d", len(a.args))
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
		args    argList
	)
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := args.next(search)
		clauses = append(clauses,
			fmt.Sprintf("(short_name ILIKE '%%' || %s || '%%' OR long_name ILIKE '%%' || %s || '%%')", p, p))
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+stationColumns+" FROM stations"+whereSQL(clauses)+" ORDER BY short_name",
		args.args...)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer rows.Close()

	stations, err := scanStations(rows)
	if err != nil {
		return nil, fmt.Errorf("scan stations: %w", err)
	}
	return stations, nil
}

func queryGetStation(ctx context.Context, db executor, id int64) (*model.Station, error) {
	row := db.QueryRowContext(ctx, `SELECT `+stationColumns+` FROM stations WHERE id = $1`, id)
	return scanStation(row)
}

func queryGetStationByShortName(ctx context.Context, db executor, shortName string) (*model.Station, error) {
	row := db.QueryRowContext(ctx, `SELECT `+stationColumns+` FROM stations WHERE short_name = $1`, shortName)
	return scanStation(row)
}

// queryUpsertStation inserts or updates a station. A station with an ID is
// keyed by ID; one without is keyed by short name and receives a new ID.
func queryUpsertStation(ctx context.Context, db executor, st *model.Station) error {
	if st.ID > 0 {
		return db.QueryRowContext(ctx, `
			INSERT INTO stations (id, short_name, long_name)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET
				short_name = EXCLUDED.short_name,
				long_name = EXCLUDED.long_name,
				updated_at = NOW()
			RETURNING id, created_at, updated_at`,
			st.ID, st.ShortName, st.LongName,
		).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO stations (short_name, long_name)
		VALUES ($1, $2)
		ON CONFLICT (short_name) DO UPDATE SET
			long_name = EXCLUDED.long_name,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		st.ShortName, st.LongName,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
}

func queryListLinks(ctx context.Context, db executor, filter model.LinkFilter) ([]*model.Link, error) {
	var (
		clauses []string
		args    argList
	)
	if filter.Network != "" {
		clauses = append(clauses, "network = "+args.next(filter.Network))
	}
	if filter.From != "" {
		clauses = append(clauses, "parent_short_name = "+args.next(filter.From))
	}
	if filter.To != "" {
		clauses = append(clauses, "child_short_name = "+args.next(filter.To))
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+linkColumns+" FROM links"+whereSQL(clauses)+" ORDER BY id",
		args.args...)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links, err := scanLinks(rows)
	if err != nil {
		return nil, fmt.Errorf("scan links: %w", err)
	}
	return links, nil
}

func queryGetLink(ctx context.Context, db executor, id int64) (*model.Link, error) {
	row := db.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE id = $1`, id)
	return scanLink(row)
}

func queryFindLinkBetween(ctx context.Context, db executor, a, b string) (*model.Link, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM links
		WHERE (parent_short_name = $1 AND child_short_name = $2)
		   OR (parent_short_name = $2 AND child_short_name = $1)
		ORDER BY distance, id
		LIMIT 1`,
		a, b,
	)
	return scanLink(row)
}

func queryUpsertLink(ctx context.Context, db executor, l *model.Link) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO links (
			network, parent_short_name, child_short_name,
			parent_station_id, child_station_id, distance
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (network, parent_short_name, child_short_name) DO UPDATE SET
			parent_station_id = EXCLUDED.parent_station_id,
			child_station_id = EXCLUDED.child_station_id,
			distance = EXCLUDED.distance,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		l.Network,
		l.Parent,
		l.Child,
		nullInt64Ptr(l.ParentStationID),
		nullInt64Ptr(l.ChildStationID),
		l.Distance,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
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
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID,
		r.SourceCode,
		r.DestinationCode,
		r.AnalyticTag,
		r.TotalDistance,
		path,
		r.CreatedAt,
	)
	return err
}

func queryGetRoute(ctx context.Context, db executor, id string) (*model.Route, error) {
	row := db.QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = $1`, id)
	return scanRoute(row)
}

func queryListRoutes(ctx context.Context, db executor, filter model.RouteFilter) ([]*model.Route, error) {
	var (
		clauses []string
		args    argList
	)
	if filter.CreatedFrom != nil {
		clauses = append(clauses, "created_at >= "+args.next(*filter.CreatedFrom))
	}
	if filter.CreatedBefore != nil {
		clauses = append(clauses, "created_at < "+args.next(*filter.CreatedBefore))
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+routeColumns+" FROM routes"+whereSQL(clauses)+" ORDER BY created_at, id",
		args.args...)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	routes, err := scanRoutes(rows)
	if err != nil {
		return nil, fmt.Errorf("scan routes: %w", err)
	}
	return routes, nil
}
