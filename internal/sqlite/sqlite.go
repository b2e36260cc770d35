package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
	"github.com/myrjola/surprise/internal/errors"
	"github.com/myrjola/surprise/internal/random"
)

//go:embed schema.sql
var schemaDefinition string

// Database holds separate connection pools for writes and reads.
type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database, synchronizes the schema and starts the hourly optimizer.
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	db, err := connect(url, logger)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}

	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "synchronize schema")
	}

	go db.startOptimizer(ctx)

	return db, nil
}

// connect establishes two connection pools, one for read/write operations and one for read-only operations.
// This is a best practice mentioned in https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
func connect(url string, logger *slog.Logger) (*Database, error) {
	var (
		err          error
		readWriteDSN string
		readOnlyDSN  string
	)

	// The options prefixed with underscore '_' are SQLite pragmas documented at https://www.sqlite.org/pragma.html.
	// The options without leading underscore are SQLite URI parameters documented at https://www.sqlite.org/uri.html.
	commonConfig := strings.Join([]string{
		"_journal_mode=wal",
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
	}, "&")

	if strings.Contains(url, ":memory:") {
		// In-memory databases need shared cache so that both pools see the same data, and a unique name so that
		// parallel tests don't share it. See https://www.sqlite.org/inmemorydb.html.
		var name string
		if name, err = random.Letters(20); err != nil { //nolint:mnd // long enough to avoid collisions
			return nil, errors.Wrap(err, "generate database name")
		}
		readWriteDSN = fmt.Sprintf("file:%s?mode=memory&cache=shared&_txlock=immediate&%s", name, commonConfig)
		readOnlyDSN = fmt.Sprintf("file:%s?mode=memory&cache=shared&_query_only=true&%s", name, commonConfig)
	} else {
		readWriteDSN = fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&%s", url, commonConfig)
		readOnlyDSN = fmt.Sprintf("file:%s?mode=ro&_txlock=deferred&_query_only=true&%s", url, commonConfig)
	}

	var readWriteDB *sqlx.DB
	if readWriteDB, err = sqlx.Open("sqlite3", readWriteDSN); err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}
	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	readWriteDB.SetConnMaxLifetime(time.Hour)
	readWriteDB.SetConnMaxIdleTime(time.Hour)

	var readOnlyDB *sqlx.DB
	if readOnlyDB, err = sqlx.Open("sqlite3", readOnlyDSN); err != nil {
		return nil, errors.Wrap(err, "open read-only database")
	}
	maxReadConns := 10
	readOnlyDB.SetMaxOpenConns(maxReadConns)
	readOnlyDB.SetMaxIdleConns(maxReadConns)
	readOnlyDB.SetConnMaxLifetime(time.Hour)
	readOnlyDB.SetConnMaxIdleTime(time.Hour)

	return &Database{
		ReadWrite: readWriteDB,
		ReadOnly:  readOnlyDB,
		logger:    logger,
	}, nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	return errors.Join(
		errors.Wrap(db.ReadWrite.Close(), "close read-write database"),
		errors.Wrap(db.ReadOnly.Close(), "close read-only database"),
	)
}
