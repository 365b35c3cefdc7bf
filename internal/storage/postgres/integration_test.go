//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/felixgeelhaar/learnhub/internal/storage/postgres"
	"github.com/felixgeelhaar/learnhub/internal/storage/storagetest"
)

// setupPostgres starts a PostgreSQL container and returns its DSN
func setupPostgres(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "learnhub",
				"POSTGRES_PASSWORD": "learnhub",
				"POSTGRES_DB":       "learnhub",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start PostgreSQL container: %v", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		testcontainers.TerminateContainer(container)
		t.Fatalf("failed to get PostgreSQL endpoint: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return fmt.Sprintf("postgres://learnhub:learnhub@%s/learnhub?sslmode=disable", endpoint), cleanup
}

func TestIntegration_Store_Conformance(t *testing.T) {
	dsn, cleanup := setupPostgres(t)
	defer cleanup()

	store, err := postgres.Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer store.Close()

	storagetest.Run(t, store)
}

func TestIntegration_EnsureSchema_Idempotent(t *testing.T) {
	dsn, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()
	store, err := postgres.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		t.Errorf("second EnsureSchema() error = %v", err)
	}
}
