// Package testutil starts throwaway Postgres and RustFS containers for
// integration and e2e tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloo-solutions/onetool/internal/database"
	"github.com/cloo-solutions/onetool/internal/storage"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:18-alpine"
	rustfsImage   = "rustfs/rustfs:latest"

	dbName = "onetool"

	// RustFSAccessKey and RustFSSecretKey are the container's root credentials.
	RustFSAccessKey = "rustfsadmin"
	RustFSSecretKey = "rustfsadmin"
)

// PostgresContainer is a running Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// NewPostgresContainer starts Postgres and fails the test if it cannot.
func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     dbName,
				"POSTGRES_PASSWORD": dbName,
				"POSTGRES_DB":       dbName,
			},
			// The server restarts once after initdb, hence two occurrences.
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, port := endpoint(ctx, t, container, "5432")
	return &PostgresContainer{Container: container, Host: host, Port: port}
}

// ConnectionString returns a libpq URL for the container.
func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbName, dbName, pc.Host, pc.Port, dbName)
}

func (pc *PostgresContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(pc.Container)
}

// RustFSContainer is a running S3-compatible object store.
type RustFSContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// NewRustFSContainer starts RustFS and fails the test if it cannot.
func NewRustFSContainer(ctx context.Context, t *testing.T) *RustFSContainer {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        rustfsImage,
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"RUSTFS_ACCESS_KEY": RustFSAccessKey,
				"RUSTFS_SECRET_KEY": RustFSSecretKey,
			},
			WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start rustfs container: %v", err)
	}

	host, port := endpoint(ctx, t, container, "9000")
	return &RustFSContainer{Container: container, Host: host, Port: port}
}

// Endpoint returns the S3 endpoint URL
func (rc *RustFSContainer) Endpoint() string {
	return fmt.Sprintf("http://%s:%s", rc.Host, rc.Port)
}

// S3Config returns client settings for bucket on this container.
func (rc *RustFSContainer) S3Config(bucket string) storage.S3ClientConfig {
	return storage.S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     RustFSAccessKey,
		SecretAccessKey: RustFSSecretKey,
		Bucket:          bucket,
		UsePathStyle:    true,
	}
}

func (rc *RustFSContainer) Terminate(ctx context.Context) error {
	return testcontainers.TerminateContainer(rc.Container)
}

func endpoint(ctx context.Context, t *testing.T, c testcontainers.Container, port string) (string, string) {
	t.Helper()

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("failed to get container port %s: %v", port, err)
	}
	return host, mapped.Port()
}

// NewTestPool applies the migrations in migrationsDir with golang-migrate and
// returns a pool on the migrated database.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	abs, err := filepath.Abs(migrationsDir)
	if err != nil {
		t.Fatalf("failed to resolve migrations dir: %v", err)
	}
	if _, err := database.Migrate(pc.ConnectionString(), "file://"+filepath.ToSlash(abs)); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := database.NewPool(ctx, database.Config{
		URL:          pc.ConnectionString(),
		MaxConns:     8,
		PingAttempts: 5,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	return pool
}

// NewMigratedDB starts Postgres, migrates it and registers cleanup for both
// the pool and the container.
func NewMigratedDB(ctx context.Context, t *testing.T, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	pc := NewPostgresContainer(ctx, t)
	t.Cleanup(func() { pc.Terminate(ctx) })

	pool := NewTestPool(ctx, t, pc, migrationsDir)
	t.Cleanup(pool.Close)
	return pool
}
