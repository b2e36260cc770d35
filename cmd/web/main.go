package main

import (
	"context"
	"encoding/gob"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/surprise/internal/envstruct"
	"github.com/myrjola/surprise/internal/errors"
	"github.com/myrjola/surprise/internal/logging"
	"github.com/myrjola/surprise/internal/pprofserver"
	"github.com/myrjola/surprise/internal/sqlite"
	"github.com/myrjola/surprise/internal/submission"
	"github.com/myrjola/surprise/internal/wizard"
	"github.com/myrjola/surprise/ui"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	htmx           *htmx.HTMX
	pages          *pages
	transport      wizard.Transport
	wizardConfig   wizard.Config
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"SURPRISE_ADDR" envDefault:"localhost:4000"`
	// PprofPort is the port for the pprof server on the loopback interface. Empty disables it.
	PprofPort string `env:"SURPRISE_PPROF_PORT" envDefault:":6060"`
	// SqliteURL is the path to the session database or ":memory:".
	SqliteURL string `env:"SURPRISE_SQLITE_URL" envDefault:"./surprise.sqlite"`
	// SubmitURL receives the finished forms.
	SubmitURL string `env:"SURPRISE_SUBMIT_URL" envDefault:"https://script.google.com/macros/s/AKfycby3PqtLaQ2aWsN4faW55lVkYzz_pxgk1vs3JalxOh8ZzS9dfS0NahXYnh_m4fFex-6D7Q/exec"` //nolint:lll // URL
	// Password unlocks the reveal slide. Empty means [wizard.DefaultPassword].
	Password string `env:"SURPRISE_PASSWORD" envDefault:""`
	// RevealDate is shown on the last slide. Empty means [wizard.DefaultRevealDate].
	RevealDate string `env:"SURPRISE_REVEAL_DATE" envDefault:""`
	// SubmitTimeout bounds a single submission request.
	SubmitTimeout time.Duration `env:"SURPRISE_SUBMIT_TIMEOUT" envDefault:"30s"`
}

func init() {
	gob.Register(wizard.Snapshot{})
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cfg config
		err error
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PprofPort != "" {
		// Initialise pprof listening on localhost so that it's not open to the world
		pprofserver.Launch(ctx, cfg.PprofPort, logger)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := scs.New()
	store := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, time.Hour)
	defer store.StopCleanup()
	sessionManager.Store = store
	sessionManager.Lifetime = 12 * time.Hour //nolint:mnd // half a day is plenty for one walk-through
	sessionManager.Cookie.Name = "surprise_session"
	sessionManager.Cookie.Persist = false
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	var p *pages
	if p, err = newPages(ui.Files); err != nil {
		return errors.Wrap(err, "parse templates")
	}

	client := &http.Client{Timeout: cfg.SubmitTimeout} //nolint:exhaustruct // defaults are fine
	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		htmx:           htmx.New(),
		pages:          p,
		transport:      submission.NewTransport(cfg.SubmitURL, client, logger),
		wizardConfig:   wizard.DefaultConfig().WithOverrides(cfg.Password, cfg.RevealDate),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug, true)

	// A missing .env file is fine, the environment may be set up by other means.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env file", errors.SlogError(err))
		os.Exit(1) //nolint:gocritic // nothing to clean up yet
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
