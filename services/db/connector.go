package db

import (
	"context"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5"

	"github.com/Artt4/disc-golf-equipment-price-comparator/logger"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
	"github.com/Artt4/disc-golf-equipment-price-comparator/services/secrets"
)

const (
	connectAttempts = 3
	connectBackoff  = time.Second
	connectTimeout  = 10 * time.Second
)

// Connector opens database connections. Each scraper invocation gets a
// fresh connection; transient connect failures are retried with a short
// backoff before giving up.
type Connector struct {
	secrets secrets.Provider
	log     *logger.Logger
}

// NewConnector creates a connector over the given secret provider
func NewConnector(provider secrets.Provider) *Connector {
	return &Connector{
		secrets: provider,
		log:     logger.ForDatabase(),
	}
}

// DSN assembles the connection string from secrets. A missing secret is a
// configuration error and surfaces before any store runs.
func (c *Connector) DSN() (string, error) {
	host, err := c.secrets.Get("connection_host")
	if err != nil {
		return "", err
	}
	user, err := c.secrets.Get("connection_user")
	if err != nil {
		return "", err
	}
	password, err := c.secrets.Get("connection_password")
	if err != nil {
		return "", err
	}
	database, err := c.secrets.Get("connection_database")
	if err != nil {
		return "", err
	}
	port, err := c.secrets.Get("connection_port")
	if err != nil {
		port = "5432"
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   host + ":" + port,
		Path:   "/" + database,
	}
	return dsn.String(), nil
}

// Open connects to the database, retrying transient failures
func (c *Connector) Open(ctx context.Context) (*Gateway, error) {
	dsn, err := c.DSN()
	if err != nil {
		return nil, err
	}

	var conn *pgx.Conn
	err = retry.Do(
		func() error {
			connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
			defer cancel()

			var connErr error
			conn, connErr = pgx.Connect(connCtx, dsn)
			return connErr
		},
		retry.Attempts(connectAttempts),
		retry.Delay(connectBackoff),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn().Err(err).Uint("attempt", n+1).Msg("Database connection failed, retrying")
		}),
	)
	if err != nil {
		return nil, apperrors.NewDatabase("", "failed to connect to database", err)
	}

	return NewGateway(conn), nil
}
