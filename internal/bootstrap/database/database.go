package database

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"candidatevet/internal/bootstrap/config"
	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
)

// Pragmas applied to every sqlite connection unless the DSN already sets them.
var sqlitePragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
}

// Open connects to the configured database. Only sqlite is supported.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	logCtx := logging.WithComponent(ctx, "bootstrap.database")

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver != "sqlite" && driver != "sqlite3" {
		return nil, errs.Validationf("unsupported database driver %q", cfg.Driver)
	}

	path := sqlitePath(cfg.DSN)
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	dsn := withPragmas(cfg.DSN)
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errs.Wrap(err, "open sqlite db")
	}

	logging.Info(logCtx, "database opened", slog.String("driver", "sqlite"), slog.String("path", path))
	return db, nil
}

// sqlitePath strips the file: scheme and query string from a DSN. In-memory DSNs
// return "".
func sqlitePath(dsn string) string {
	candidate := strings.TrimSpace(dsn)
	candidate = strings.TrimPrefix(candidate, "file:")
	if idx := strings.IndexByte(candidate, '?'); idx >= 0 {
		candidate = candidate[:idx]
	}
	if candidate == ":memory:" {
		return ""
	}
	return candidate
}

func withPragmas(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	base, rawQuery, _ := strings.Cut(dsn, "?")

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return dsn
	}
	present := make(map[string]bool)
	for _, pragma := range query["_pragma"] {
		name, _, _ := strings.Cut(pragma, "(")
		present[strings.ToLower(name)] = true
	}
	for _, pragma := range sqlitePragmas {
		name, _, _ := strings.Cut(pragma, "(")
		if !present[name] {
			query.Add("_pragma", pragma)
		}
	}
	return base + "?" + query.Encode()
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrapf(err, "create sqlite directory %q", dir)
	}
	return nil
}
