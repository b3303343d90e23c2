package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

// open returns a read-only handle on the database at path and checks that it can be reached.
// With sqlDebug every statement goes through the logging connector.
func open(path string, sqlDebug bool, logger *slog.Logger) (*sql.DB, error) {
	dsn := buildDSN(path)

	var db *sql.DB
	if sqlDebug {
		conn, err := NewLoggingConnector(dsn, logger)
		if err != nil {
			return nil, err
		}
		db = sql.OpenDB(conn)
	} else {
		var err error
		db, err = sql.Open(driverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	// One reader is all a single load needs.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func buildDSN(path string) string {
	params := []string{
		"mode=ro",
		"_busy_timeout=5000",
	}

	// A caller passing "file:/data/x.db?y=z" keeps its own parameters.
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&")
	}

	return fmt.Sprintf("file:%s?%s", uriEscaper.Replace(path), strings.Join(params, "&"))
}
