package store

import (
	"context"

	"github.com/rotisserie/eris"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the store selected by driver.
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Store, error) {
	if dsn == "" {
		return nil, eris.Errorf("store: database url is required for driver %q", driver)
	}
	switch driver {
	case DriverPostgres, "":
		return NewPostgres(ctx, dsn, poolCfg)
	case DriverSQLite:
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
