package pg

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	migrations "github.com/dropDatabas3/hellojohn-introspect/migrations/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpFiles_SortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_b_up.sql":   {Data: []byte("SELECT 2")},
		"0001_a_up.sql":   {Data: []byte("SELECT 1")},
		"0001_a_down.sql": {Data: []byte("SELECT 0")},
		"README.md":       {Data: []byte("x")},
	}

	files, err := upFiles(fsys)

	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a_up.sql", "0002_b_up.sql"}, files)
}

func TestEmbeddedSchema(t *testing.T) {
	files, err := upFiles(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)
}

// recordingConn registra cada sentencia que recibe una única conexión.
type recordingConn struct {
	gotLock bool
	stmts   []string
}

type boolRow struct{ v bool }

func (r boolRow) Scan(dest ...any) error {
	*(dest[0].(*bool)) = r.v
	return nil
}

func (c *recordingConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.stmts = append(c.stmts, sql)
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (c *recordingConn) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	c.stmts = append(c.stmts, sql)
	return boolRow{v: c.gotLock}
}

func TestWithMigrationLock_SameConnection(t *testing.T) {
	cases := []struct {
		name    string
		gotLock bool
		want    []string
	}{
		{"lock free", true, []string{
			"SELECT pg_try_advisory_lock($1)",
			"work",
			"SELECT pg_advisory_unlock($1)",
		}},
		{"lock held elsewhere", false, []string{
			"SELECT pg_try_advisory_lock($1)",
			"SELECT pg_advisory_lock($1)",
			"work",
			"SELECT pg_advisory_unlock($1)",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Given
			conn := &recordingConn{gotLock: tc.gotLock}

			// When
			err := withMigrationLock(context.Background(), conn, time.Second, func(context.Context) error {
				conn.stmts = append(conn.stmts, "work")
				return nil
			})

			// Then: lock, trabajo y unlock pasan por la misma conexión
			require.NoError(t, err)
			assert.Equal(t, tc.want, conn.stmts)
		})
	}
}

func TestWithMigrationLock_ReleasesOnError(t *testing.T) {
	conn := &recordingConn{gotLock: true}
	boom := errors.New("script failed")

	err := withMigrationLock(context.Background(), conn, time.Second, func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	require.NotEmpty(t, conn.stmts)
	assert.Equal(t, "SELECT pg_advisory_unlock($1)", conn.stmts[len(conn.stmts)-1])
}
