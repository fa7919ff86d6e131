package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// GoogleCloudSQLConnector connects to Cloud SQL with IAM database
// authentication through the Cloud SQL Go Connector dialer.
//
// The dialer outlives Connect; call Close after closing the pool.
type GoogleCloudSQLConnector struct {
	config   *roomstat.ConnectionConfig
	instance string
	dialer   *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector takes the instance connection name (project:region:instance).
func NewGoogleCloudSQLConnector(config *roomstat.ConnectionConfig, instance string) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config:   config,
		instance: instance,
	}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, &roomstat.ConnectionError{Database: c.config.Database, Err: fmt.Errorf("failed to create Cloud SQL dialer: %w", err)}
	}

	// TLS is handled by the dialer.
	dsn := fmt.Sprintf("user=%s dbname=%s sslmode=disable", c.config.Username, c.config.Database)
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("%w: failed to parse connection config: %v", roomstat.ErrInvalidConfig, err)
	}
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	}
	configurePool(poolConfig)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout(c.config))
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		dialer.Close()
		return nil, &roomstat.ConnectionError{Host: c.instance, Database: c.config.Database, Err: err}
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		dialer.Close()
		return nil, &roomstat.ConnectionError{Host: c.instance, Database: c.config.Database, Err: err}
	}

	c.dialer = dialer
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		err := c.dialer.Close()
		c.dialer = nil
		return err
	}
	return nil
}
