package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/cinebridge-backend/internal/data/db"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logg, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return logg
}

// DB opens a fresh sqlite database in a temp dir with the catalog schema.
// One open connection keeps concurrent transactions queued on the pool
// instead of tripping over sqlite's single-writer lock.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "catalog.db")
	db, err := gorm.Open(sqlite.Open(dbpkg.SQLiteDSN(path)), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("test db pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := dbpkg.AutoMigrateAll(db); err != nil {
		tb.Fatalf("automigrate: %v", err)
	}
	if err := dbpkg.EnsureCatalogIndexes(db); err != nil {
		tb.Fatalf("ensure indexes: %v", err)
	}
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// PooledDB opens the catalog schema through the production Open path with a
// real connection pool, so transactions on separate connections overlap.
func PooledDB(tb testing.TB, maxOpen int) *gorm.DB {
	tb.Helper()

	svc, err := dbpkg.Open(logger.Nop(), dbpkg.Config{
		Driver:       dbpkg.DriverSQLite,
		SQLitePath:   filepath.Join(tb.TempDir(), "catalog.db"),
		MaxOpenConns: maxOpen,
		MaxIdleConns: maxOpen,
	})
	if err != nil {
		tb.Fatalf("open pooled db: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })

	if err := svc.AutoMigrateAll(); err != nil {
		tb.Fatalf("automigrate: %v", err)
	}
	return svc.DB()
}
