package services

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/roomstat/internal/db"
	"github.com/vvka-141/roomstat/pkg/roomstat"
)

// Opener connects to the database described by a ConnectionConfig. The
// returned release func closes every resource the connection holds.
type Opener func(ctx context.Context, config *roomstat.ConnectionConfig) (roomstat.DBConnection, func(), error)

// PoolOpener builds an Opener on top of a connector factory such as
// db.NewConnector. Connectors holding their own resources (the Cloud SQL
// dialer) are closed together with the pool.
func PoolOpener(factory roomstat.ConnectorFactory) Opener {
	if factory == nil {
		panic("connectorFactory cannot be nil")
	}
	return func(ctx context.Context, config *roomstat.ConnectionConfig) (roomstat.DBConnection, func(), error) {
		connector, err := factory(config)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create connector: %w", err)
		}

		pool, err := connector.Connect(ctx)
		if err != nil {
			closeConnector(connector)
			return nil, nil, err
		}

		release := func() {
			pool.Close()
			closeConnector(connector)
		}
		return db.NewPoolAdapter(pool), release, nil
	}
}

func closeConnector(connector roomstat.Connector) {
	if c, ok := connector.(io.Closer); ok {
		_ = c.Close()
	}
}
