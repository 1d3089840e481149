//go:build integration

package database

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	// Registers the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	tclog "github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type nopLogger struct{}

func (*nopLogger) Printf(_ string, _ ...any) {}

var _ tclog.Logger = (*nopLogger)(nil)

var (
	dbName = "testdb"
	dbUser = "testuser"
	dbPass = "testpass"
)

// SetupTestDB starts a Postgres container, applies the migrations (down and up again to
// exercise the rollback scripts) and returns an open database handle.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPass),
		postgres.BasicWaitStrategies(),
		tc.WithLogger(&nopLogger{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		tc.CleanupContainer(t, postgresContainer)
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrateURL := "pgx5://" + strings.TrimPrefix(connStr, "postgres://")
	require.NoError(t, MigrateUp(DialectPostgres, migrateURL))
	require.NoError(t, MigrateDown(DialectPostgres, migrateURL, 0))
	require.NoError(t, MigrateUp(DialectPostgres, migrateURL))

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	require.NoError(t, db.PingContext(ctx))

	return db
}
