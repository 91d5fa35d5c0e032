// Package catalog records loaded swaths in a PostGIS table so they can be
// found by footprint and acquisition time.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Schema creates the swath table. Footprints are stored in EPSG:4326.
const Schema = `create table if not exists l2_swaths (
	path       text primary key,
	satellite  text not null,
	instrument text not null,
	start_time timestamptz not null,
	end_time   timestamptz not null,
	footprint  geometry(Polygon, 4326),
	products   text[] not null
)`

const insertSQL = `insert into l2_swaths
	(path, satellite, instrument, start_time, end_time, footprint, products)
	values ($1, $2, $3, $4, $5, st_geomfromtext(nullif($6, ''), 4326), $7)
	on conflict (path) do update set
		satellite = excluded.satellite,
		instrument = excluded.instrument,
		start_time = excluded.start_time,
		end_time = excluded.end_time,
		footprint = excluded.footprint,
		products = excluded.products`

// The nullif() calls turn Go zero values for missing filters into nulls.
const intersectsSQL = `select coalesce(json_agg(path order by start_time), '[]')::text
	from l2_swaths
	where (nullif($1, '') is null or st_intersects(footprint, st_geomfromtext($1, 4326)))
	and ($2::timestamptz is null or end_time >= $2::timestamptz)
	and ($3::timestamptz is null or start_time <= $3::timestamptz)
	and (nullif($4, '') is null or instrument = $4)`

// Record describes one swath file.
type Record struct {
	Path       string
	Satellite  string
	Instrument string
	Start      time.Time
	End        time.Time
	// Footprint is a WKT polygon, empty when the swath corners have no
	// geolocation.
	Footprint string
	Products  []string
}

// Query selects swaths. Zero fields do not filter.
type Query struct {
	WKT        string
	From       time.Time
	Until      time.Time
	Instrument string
}

// ParseQuery builds a Query from command line values. from and until are
// RFC 3339 times; empty values do not filter.
func ParseQuery(wkt, from, until, instrument string) (*Query, error) {
	q := &Query{WKT: strings.TrimSpace(wkt), Instrument: instrument}
	for _, tv := range []struct {
		value string
		dst   *time.Time
	}{{from, &q.From}, {until, &q.Until}} {
		if len(tv.value) == 0 {
			continue
		}
		t, err := time.Parse(time.RFC3339, tv.value)
		if err != nil {
			return nil, fmt.Errorf("catalog query time %q: %v", tv.value, err)
		}
		*tv.dst = t
	}
	if !q.From.IsZero() && !q.Until.IsZero() && q.Until.Before(q.From) {
		return nil, fmt.Errorf("catalog query ends at %v before it starts at %v", q.Until, q.From)
	}
	return q, nil
}

type store interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Catalog struct {
	db store
}

// Open connects to Postgres, e.g. "user=l2 host=/var/run/postgresql
// dbname=mas sslmode=disable".
func Open(dsn string, pool int) (*Catalog, *sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxIdleConns(pool)
	db.SetMaxOpenConns(pool)
	return New(db), db, nil
}

func New(db store) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) CreateSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, Schema)
	return err
}

func (r *Record) args() []interface{} {
	return []interface{}{
		r.Path,
		r.Satellite,
		r.Instrument,
		r.Start.UTC(),
		r.End.UTC(),
		r.Footprint,
		pq.Array(r.Products),
	}
}

func (c *Catalog) Insert(ctx context.Context, r *Record) error {
	if len(r.Path) == 0 {
		return fmt.Errorf("catalog record needs a path")
	}
	if _, err := c.db.ExecContext(ctx, insertSQL, r.args()...); err != nil {
		return fmt.Errorf("catalog insert %s: %v", r.Path, err)
	}
	return nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func (q *Query) args() []interface{} {
	return []interface{}{q.WKT, nullTime(q.From), nullTime(q.Until), q.Instrument}
}

// Intersects returns the paths of matching swaths ordered by start time.
func (c *Catalog) Intersects(ctx context.Context, q *Query) ([]string, error) {
	var payload string
	if err := c.db.QueryRowContext(ctx, intersectsSQL, q.args()...).Scan(&payload); err != nil {
		return nil, err
	}
	return decodePaths(payload)
}

func decodePaths(payload string) ([]string, error) {
	var paths []string
	if err := json.Unmarshal([]byte(payload), &paths); err != nil {
		return nil, fmt.Errorf("catalog payload: %v", err)
	}
	return paths, nil
}
