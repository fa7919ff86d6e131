package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/roomstat/internal/retry"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// TokenBasedConnector implements the Connector interface for cloud providers
// that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
type TokenBasedConnector struct {
	config        *roomstat.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	now           func() time.Time
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for authentication.
// providerName is used in error messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *roomstat.ConnectionConfig, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: retry.NewDefaultExecutor(),
		providerName:  providerName,
		now:           time.Now,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	token, expiresOn, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, &roomstat.ConnectionError{
			Host:     c.config.Host,
			Port:     c.config.Port,
			Database: c.config.Database,
			Err:      fmt.Errorf("failed to acquire %s token: %w", c.providerName, err),
		}
	}
	if remaining := expiresOn.Sub(c.now()); remaining < minTokenLifetime {
		return nil, &roomstat.ConnectionError{
			Host:     c.config.Host,
			Port:     c.config.Port,
			Database: c.config.Database,
			Err:      fmt.Errorf("%s token expires in %v", c.providerName, remaining.Round(time.Second)),
		}
	}

	withToken := *c.config
	withToken.Password = token

	return openPool(ctx, c.retryExecutor, c.config, BuildConnectionString(&withToken))
}
