package util

import (
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cresszm/cress/pkg/errors"
)

// OpenDatabase opens a gorm connection for the configured driver. An empty
// sqlite DSN yields an in-memory database, which the tests rely on.
func OpenDatabase(cfg *gorm.Config, driver, dsn string) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "pg", "postgres":
		dialector = postgres.Open(dsn)
	default:
		if dsn == "" {
			dsn = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	return db, nil
}
