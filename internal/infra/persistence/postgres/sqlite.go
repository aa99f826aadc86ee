package postgres

import (
	"greencycle/internal/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Pure-Go driver registered as "sqlite".
	_ "modernc.org/sqlite"
)

// sqliteMaxOpenConns keeps one writer so concurrent transactions queue instead of failing with SQLITE_BUSY.
const sqliteMaxOpenConns = 1

func newSQLite(params Params) (*gorm.DB, error) {
	db, err := OpenSQLite(params.Config.SQLite.Path, newGormSlogLogger(params.Logger, params.Config))
	if err != nil {
		return nil, err
	}

	if err := register(params, db, "SQLite"); err != nil {
		return nil, err
	}

	return db, nil
}

// OpenSQLite opens the SQLite database at path for local runs and tests.
// SQLite has no row locks; the single connection serialises transactions instead.
func OpenSQLite(path string, gormLogger logger.Interface) (*gorm.DB, error) {
	if gormLogger == nil {
		gormLogger = logger.Discard
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SQLite sql.DB")
	}
	sqlDB.SetMaxOpenConns(sqliteMaxOpenConns)

	return db, nil
}
