package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"careerlift-backend/internal/shared/telemetry"
)

// Options controls database pool and connectivity behavior.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var (
	openDB      = sql.Open
	singletonMu sync.Mutex
	singletonDB *sql.DB
)

// DefaultServerOptions returns defaults for long-running server processes.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// DefaultMigrateOptions returns defaults for short-lived CLI migrations.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// OptionsFromEnv applies DB_* overrides on top of defaults. Unparseable values are logged
// and ignored.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	override("DB_MAX_OPEN_CONNS", strconv.Atoi, &opts.MaxOpenConns)
	override("DB_MAX_IDLE_CONNS", strconv.Atoi, &opts.MaxIdleConns)
	override("DB_CONN_MAX_LIFETIME", time.ParseDuration, &opts.ConnMaxLifetime)
	override("DB_CONN_MAX_IDLE_TIME", time.ParseDuration, &opts.ConnMaxIdleTime)
	override("DB_PING_TIMEOUT", time.ParseDuration, &opts.PingTimeout)
	return opts
}

func override[T any](key string, parse func(string) (T, error), dst *T) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := parse(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = v
}

// Connect opens a *sql.DB using the provided DATABASE_URL and verifies connectivity.
// The returned *sql.DB should be shared and re-used by callers.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	applyOptions(db, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logPoolStats(db, "db.init")
	return db, nil
}

// GetSingleton returns the process-wide *sql.DB shared by the history and catalog repos.
// Concurrent callers wait for the first connection attempt; a failed attempt is retried
// by the next caller.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singletonDB != nil {
		return singletonDB, nil
	}
	db, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	singletonDB = db
	telemetry.Info("db.singleton_init", nil)
	return singletonDB, nil
}

// resetSingleton drops the shared handle without closing it.
func resetSingleton() {
	singletonMu.Lock()
	singletonDB = nil
	singletonMu.Unlock()
}

func applyOptions(db *sql.DB, opts Options) {
	def := DefaultServerOptions()
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = def.MaxOpenConns
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = def.MaxIdleConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = def.ConnMaxLifetime
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
}

func logPoolStats(db *sql.DB, label string) {
	st := db.Stats()
	telemetry.Info(label, map[string]any{
		"max_open": st.MaxOpenConnections,
		"open":     st.OpenConnections,
		"idle":     st.Idle,
	})
}
