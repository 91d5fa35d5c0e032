package catalog

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	queries []string
	args    [][]interface{}
	err     error
}

func (f *fakeStore) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	return driver.RowsAffected(1), f.err
}

func (f *fakeStore) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	panic("not used")
}

func TestInsert(t *testing.T) {
	fake := &fakeStore{}
	c := New(fake)

	start := time.Date(2020, 2, 29, 13, 5, 0, 0, time.FixedZone("AEDT", 11*3600))
	rec := &Record{
		Path:       "/data/modis/2020/060/A2020060130500.L2_LAC_OC.hdf",
		Satellite:  "Aqua",
		Instrument: "modis",
		Start:      start,
		End:        start.Add(5 * time.Minute),
		Footprint:  "POLYGON ((10 50,12 50.2,12.5 49.2,10.5 49,10 50))",
		Products:   []string{"chlor_a", "Rrs_443"},
	}
	require.NoError(t, c.Insert(context.Background(), rec))

	require.Len(t, fake.args, 1)
	args := fake.args[0]
	require.Len(t, args, 7)
	assert.Equal(t, rec.Path, args[0])
	assert.Equal(t, time.UTC, args[3].(time.Time).Location())
	assert.True(t, start.Equal(args[3].(time.Time)))

	products, ok := args[6].(*pq.StringArray)
	require.True(t, ok)
	v, err := products.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"chlor_a","Rrs_443"}`, v)
}

func TestInsertErrors(t *testing.T) {
	fake := &fakeStore{err: errors.New("connection refused")}
	c := New(fake)

	assert.Error(t, c.Insert(context.Background(), &Record{}))
	assert.Empty(t, fake.queries)

	err := c.Insert(context.Background(), &Record{Path: "/a.hdf"})
	assert.EqualError(t, err, "catalog insert /a.hdf: connection refused")
}

func TestCreateSchema(t *testing.T) {
	fake := &fakeStore{}
	require.NoError(t, New(fake).CreateSchema(context.Background()))
	assert.Equal(t, []string{Schema}, fake.queries)
}

func TestQueryArgs(t *testing.T) {
	q := &Query{Instrument: "modis", Until: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)}
	args := q.args()
	assert.Equal(t, "", args[0])
	assert.Nil(t, args[1])
	assert.Equal(t, q.Until, args[2])
	assert.Equal(t, "modis", args[3])
}

func TestDecodePaths(t *testing.T) {
	paths, err := decodePaths(`["/a.hdf","/b.hdf"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a.hdf", "/b.hdf"}, paths)

	paths, err = decodePaths(`[]`)
	require.NoError(t, err)
	assert.Empty(t, paths)

	_, err = decodePaths(`{`)
	assert.Error(t, err)
}

// recordingConnector is a database/sql connector whose statements record
// their SQL and arguments and whose queries return one row holding payload.
type recordingConnector struct {
	mu      sync.Mutex
	queries []string
	args    [][]driver.Value
	payload string
	err     error
}

func (c *recordingConnector) Connect(ctx context.Context) (driver.Conn, error) {
	return &recordingConn{c: c}, nil
}

func (c *recordingConnector) Open(name string) (driver.Conn, error) {
	return &recordingConn{c: c}, nil
}

func (c *recordingConnector) Driver() driver.Driver { return c }

func (c *recordingConnector) record(query string, args []driver.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, query)
	c.args = append(c.args, args)
	return c.err
}

type recordingConn struct {
	c *recordingConnector
}

func (conn *recordingConn) Prepare(query string) (driver.Stmt, error) {
	return &recordingStmt{c: conn.c, query: query}, nil
}

func (conn *recordingConn) Close() error { return nil }

func (conn *recordingConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions are not supported")
}

type recordingStmt struct {
	c     *recordingConnector
	query string
}

func (st *recordingStmt) Close() error  { return nil }
func (st *recordingStmt) NumInput() int { return -1 }

func (st *recordingStmt) Exec(args []driver.Value) (driver.Result, error) {
	if err := st.c.record(st.query, args); err != nil {
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

func (st *recordingStmt) Query(args []driver.Value) (driver.Rows, error) {
	if err := st.c.record(st.query, args); err != nil {
		return nil, err
	}
	return &payloadRows{payload: st.c.payload}, nil
}

type payloadRows struct {
	payload string
	done    bool
}

func (r *payloadRows) Columns() []string { return []string{"json"} }
func (r *payloadRows) Close() error      { return nil }

func (r *payloadRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = r.payload
	return nil
}

func TestIntersects(t *testing.T) {
	conn := &recordingConnector{payload: `["/data/a.hdf","/data/b.hdf"]`}
	db := sql.OpenDB(conn)
	defer db.Close()
	c := New(db)

	q, err := ParseQuery("POLYGON ((10 49,13 49,13 51,10 51,10 49))", "2020-02-29T13:00:00Z", "", "modis")
	require.NoError(t, err)

	paths, err := c.Intersects(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/a.hdf", "/data/b.hdf"}, paths)

	require.Len(t, conn.queries, 1)
	assert.Equal(t, intersectsSQL, conn.queries[0])
	args := conn.args[0]
	require.Len(t, args, 4)
	assert.Equal(t, "POLYGON ((10 49,13 49,13 51,10 51,10 49))", args[0])
	assert.Equal(t, time.Date(2020, 2, 29, 13, 0, 0, 0, time.UTC), args[1])
	assert.Nil(t, args[2])
	assert.Equal(t, "modis", args[3])

	conn.err = errors.New("relation \"l2_swaths\" does not exist")
	_, err = c.Intersects(context.Background(), &Query{})
	assert.Error(t, err)
}

func TestInsertThroughDriver(t *testing.T) {
	conn := &recordingConnector{}
	db := sql.OpenDB(conn)
	defer db.Close()

	rec := &Record{Path: "/a.hdf", Satellite: "Aqua", Instrument: "modis", Products: []string{"chlor_a"}}
	require.NoError(t, New(db).Insert(context.Background(), rec))

	require.Len(t, conn.args, 1)
	assert.Equal(t, insertSQL, conn.queries[0])
	assert.Equal(t, "", conn.args[0][5])
	assert.Equal(t, `{"chlor_a"}`, conn.args[0][6])
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(" POLYGON ((0 0,1 0,1 1,0 0)) ", "", "2020-03-01T00:00:00+11:00", "")
	require.NoError(t, err)
	assert.Equal(t, "POLYGON ((0 0,1 0,1 1,0 0))", q.WKT)
	assert.True(t, q.From.IsZero())
	assert.True(t, q.Until.Equal(time.Date(2020, 2, 29, 13, 0, 0, 0, time.UTC)))

	_, err = ParseQuery("", "yesterday", "", "")
	assert.Error(t, err)

	_, err = ParseQuery("", "2020-03-01T00:00:00Z", "2020-02-01T00:00:00Z", "")
	assert.Error(t, err)
}
