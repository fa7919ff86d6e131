package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/roomstat/internal/retry"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns bounds the pool; a run uses one transaction at a time.
	DefaultMaxConns = 5

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
}

// connectTimeout bounds a single connection attempt.
func connectTimeout(config *roomstat.ConnectionConfig) time.Duration {
	if config.ConnectTimeout > 0 {
		return config.ConnectTimeout
	}
	return roomstat.DefaultConnectTimeout
}

// openPool parses connStr, opens a pool and pings it, retrying transient failures.
// Each attempt is bounded by the config's connect timeout.
func openPool(ctx context.Context, executor *retry.Executor, config *roomstat.ConnectionConfig, connStr string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection config: %v", roomstat.ErrInvalidConfig, err)
	}
	configurePool(poolConfig)

	var pool *pgxpool.Pool
	err = executor.Execute(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout(config))
		defer cancel()

		p, err := pgxpool.NewWithConfig(attemptCtx, poolConfig.Copy())
		if err != nil {
			return wrapConnectionError(err, config)
		}
		if err := p.Ping(attemptCtx); err != nil {
			p.Close()
			return wrapConnectionError(err, config)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// StandardConnector implements the Connector interface for standard
// username/password authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *roomstat.ConnectionConfig
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a new StandardConnector with the given configuration.
func NewStandardConnector(config *roomstat.ConnectionConfig) *StandardConnector {
	return &StandardConnector{
		config:        config,
		retryExecutor: retry.NewDefaultExecutor(),
	}
}

// Connect establishes a connection pool using standard authentication with automatic retry.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return openPool(ctx, c.retryExecutor, c.config, BuildConnectionString(c.config))
}

// NewConnector is a factory function that creates the appropriate Connector
// based on the ConnectionConfig's AuthMethod. It satisfies roomstat.ConnectorFactory.
func NewConnector(config *roomstat.ConnectionConfig) (roomstat.Connector, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: connection config is nil", roomstat.ErrInvalidConfig)
	}
	switch config.AuthMethod {
	case roomstat.AuthMethodStandard:
		return NewStandardConnector(config), nil
	case roomstat.AuthMethodAWSIAM:
		return newAWSConnector(config)
	case roomstat.AuthMethodGoogleIAM:
		return newGoogleConnector(config)
	case roomstat.AuthMethodAzureEntraID:
		return newAzureConnector(config)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, roomstat.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError turns a raw pgx failure into a *roomstat.ConnectionError
// whose message carries a hint for the most common causes.
func wrapConnectionError(err error, config *roomstat.ConnectionConfig) error {
	errStr := strings.ToLower(err.Error())

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf("is PostgreSQL running? check: pg_isready -h %s -p %d", config.Host, config.Port)
	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		hint = fmt.Sprintf("cannot resolve host %q", config.Host)
	case strings.Contains(errStr, "password authentication failed"):
		hint = "check the username and $PGPASSWORD / $DB_PASSWORD"
	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf("create it with: createdb %s (or run with --create-database)", config.Database)
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "deadline exceeded"):
		hint = fmt.Sprintf("no answer within %v", connectTimeout(config))
	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = "check --sslmode and the client certificate settings"
	case strings.Contains(errStr, "too many connections"):
		hint = "max_connections reached on the server"
	}

	if hint != "" {
		err = fmt.Errorf("%w (%s)", err, hint)
	}
	return &roomstat.ConnectionError{
		Host:     config.Host,
		Port:     config.Port,
		Database: config.Database,
		Err:      err,
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *roomstat.ConnectionConfig) (roomstat.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, err
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM"), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *roomstat.ConnectionConfig) (roomstat.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("%w: Google Cloud SQL IAM auth requires --google-instance (project:region:instance)", roomstat.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("%w: Google Cloud SQL IAM auth requires username (-U)", roomstat.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance), nil
}

// newAzureConnector uses Service Principal auth when tenant, client and secret
// are all present, and the DefaultAzureCredential chain otherwise.
func newAzureConnector(config *roomstat.ConnectionConfig) (roomstat.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, err
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure"), nil
}
