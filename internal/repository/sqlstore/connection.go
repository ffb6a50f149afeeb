package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/db/migrations"

	// Register the database/sql drivers.
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

type dialect struct {
	name      string
	upsertSQL string
	migrateDB func(*sql.DB) (database.Driver, error)
}

const insertColumns = "INSERT INTO count_records (item_name, date, yesterday_count, current_count, restocks_received, sold_calculated, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"

var sqliteDialect = dialect{
	name: "sqlite",
	upsertSQL: insertColumns + ` ON CONFLICT (item_name, date) DO UPDATE SET
		yesterday_count = excluded.yesterday_count,
		current_count = excluded.current_count,
		restocks_received = excluded.restocks_received,
		sold_calculated = excluded.sold_calculated`,
	migrateDB: func(db *sql.DB) (database.Driver, error) {
		return migratesqlite.WithInstance(db, &migratesqlite.Config{})
	},
}

var mysqlDialect = dialect{
	name: "mysql",
	upsertSQL: insertColumns + ` ON DUPLICATE KEY UPDATE
		yesterday_count = VALUES(yesterday_count),
		current_count = VALUES(current_count),
		restocks_received = VALUES(restocks_received),
		sold_calculated = VALUES(sold_calculated)`,
	migrateDB: func(db *sql.DB) (database.Driver, error) {
		return migratemysql.WithInstance(db, &migratemysql.Config{})
	},
}

// OpenSQLite opens (creating if needed) the SQLite ledger at path and applies
// migrations. ":memory:" yields a private in-memory database.
func OpenSQLite(path string, logger *zap.Logger) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("sqlite path must not be empty")
	}

	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", filepath.ToSlash(absPath))
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	return open(db, sqliteDialect, logger)
}

// OpenMySQL connects to MySQL using dsn and applies migrations. The DSN should
// enable parseTime so created_at is decoded as a timestamp.
func OpenMySQL(dsn string, logger *zap.Logger) (*Ledger, error) {
	if dsn == "" {
		return nil, errors.New("mysql dsn must not be empty")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql database: %w", err)
	}

	return open(db, mysqlDialect, logger)
}

func open(db *sql.DB, d dialect, logger *zap.Logger) (*Ledger, error) {
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", d.name, err)
	}

	if err := runMigrations(db, d); err != nil {
		_ = db.Close()
		return nil, err
	}

	ledger := newLedger(db, d, logger)
	ledger.logger.Info("sql ledger ready", zap.String("dialect", d.name))
	return ledger, nil
}

func runMigrations(db *sql.DB, d dialect) error {
	driver, err := d.migrateDB(db)
	if err != nil {
		return fmt.Errorf("failed to initialise migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.Files, d.name)
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	defer func() {
		_ = sourceDriver.Close()
	}()

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, d.name, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
