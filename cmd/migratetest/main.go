package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/surprise/internal/errors"
	"github.com/myrjola/surprise/internal/logging"
	"github.com/myrjola/surprise/internal/sqlite"
)

// main synchronizes the schema of a copy of the production session database and reads it back. Run it before
// deploying a schema change.
func main() {
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug, false)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("SURPRISE_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "SURPRISE_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	// Sessions come and go so an empty table is fine. Reading it proves the schema is usable by the session store.
	var total, active int
	if err = db.ReadOnly.GetContext(ctx, &total, `SELECT COUNT(*) FROM sessions`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error counting sessions", errors.SlogError(err))
		os.Exit(1)
	}
	if err = db.ReadOnly.GetContext(ctx, &active,
		`SELECT COUNT(*) FROM sessions WHERE expiry > julianday('now')`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error counting active sessions", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "session count", slog.Int("total", total), slog.Int("active", active))

	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
