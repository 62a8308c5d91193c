package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

const (
	pgForeignKeyViolation = "23503"
	pgAdminShutdown       = "57P01"
	pgCannotConnectNow    = "57P03"
)

// classify maps driver failures onto the store sentinels. Errors that mean
// the database cannot be reached become entity.ErrStoreUnavailable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", entity.ErrLeadNotFound, pgErr.Message)
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == pgAdminShutdown, pgErr.Code == pgCannotConnectNow:
			return fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)
	}
	return err
}
