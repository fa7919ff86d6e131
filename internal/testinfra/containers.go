// Package testinfra starts throwaway PostgreSQL servers for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	DefaultPostgresImage = "postgres:17-alpine"
	PostgresUser         = "postgres"
	PostgresPassword     = "postgres"
	PostgresDB           = "postgres"

	// ImageEnvVar overrides DefaultPostgresImage.
	ImageEnvVar = "ROOMSTAT_TEST_IMAGE"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	// ConnString points at the maintenance database.
	ConnString string
}

// Image returns the PostgreSQL image used for test containers.
func Image() string {
	if image := os.Getenv(ImageEnvVar); image != "" {
		return image
	}
	return DefaultPostgresImage
}

// StartPostgres runs a PostgreSQL container without TLS and waits until it
// accepts connections. The server logs readiness twice (init, then real start).
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		Image(),
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}
