//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestGlexportWithMySQL tests the glexport CLI with a MySQL backend.
func TestGlexportWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "glexport",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/glexport?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestGlexportWithPostgres tests the glexport CLI with a PostgreSQL backend.
func TestGlexportWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario runs clear, export, status and prune against one database.
// Cache and history share the database but use separate tables.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Helper()
	fake := newFakeGitLab(t)
	home := t.TempDir()
	env := append(fake.env(),
		"GLEXPORT_CACHE_BACKEND="+backend,
		"GLEXPORT_CACHE_DB_CONNECT="+connStr,
		"GLEXPORT_CACHE_TTL=1h",
		"GLEXPORT_HISTORY_BACKEND="+backend,
		"GLEXPORT_HISTORY_DB_CONNECT="+connStr,
	)

	_, err := runGlexport(t, home, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runGlexport(t, home, env, "history", "clear")
	require.NoError(t, err)

	_, err = runGlexport(t, home, env, exportArgs(filepath.Join(home, "first.csv"))...)
	require.NoError(t, err)
	_, err = runGlexport(t, home, env, append(exportArgs(filepath.Join(home, "second.parquet")), "--output", "parquet")...)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.commitRequests.Load())
	assert.FileExists(t, filepath.Join(home, "second.parquet"))

	out, err := runGlexport(t, home, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected: true")

	out, err = runGlexport(t, home, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")

	out, err = runGlexport(t, home, env, "cache", "prune", "--older-than", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed")
}
