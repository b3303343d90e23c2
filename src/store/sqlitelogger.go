package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// errReadOnly is returned by every write path of the traced connection. Loading never writes.
var errReadOnly = errors.New("sqlite3-trace: connection is read-only")

// traceConnector opens sqlite3 connections that log each query, its arguments, the number of
// rows read and how long reading them took.
type traceConnector struct {
	dsn    string
	logger *slog.Logger
}

// NewLoggingConnector returns a driver.Connector for sql.OpenDB that traces queries at debug
// level and refuses writes. A nil logger means slog.Default().
func NewLoggingConnector(dsn string, logger *slog.Logger) (driver.Connector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &traceConnector{dsn: dsn, logger: logger}, nil
}

func (c *traceConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := (&sqlite3.SQLiteDriver{}).Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &traceConn{conn: conn, logger: c.logger}, nil
}

func (c *traceConnector) Driver() driver.Driver { return traceDriver{} }

type traceDriver struct{}

func (traceDriver) Open(string) (driver.Conn, error) {
	return nil, fmt.Errorf("sqlite3-trace: use sql.OpenDB(NewLoggingConnector(...)) instead of sql.Open")
}

type traceConn struct {
	conn   driver.Conn
	logger *slog.Logger
}

func (c *traceConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *traceConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if prep, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = prep.PrepareContext(ctx, query)
	} else {
		stmt, err = c.conn.Prepare(query)
	}
	if err != nil {
		c.logger.Debug("sql", "op", "prepare", "sql", query, "error", err)
		return nil, err
	}
	return &traceStmt{stmt: stmt, query: query, logger: c.logger}, nil
}

func (c *traceConn) Close() error { return c.conn.Close() }

// Begin and BeginTx only satisfy driver.Conn; transactions are refused.
func (c *traceConn) Begin() (driver.Tx, error) { return nil, errReadOnly }

func (c *traceConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return nil, errReadOnly
}

type traceStmt struct {
	stmt   driver.Stmt
	query  string
	logger *slog.Logger
}

func (s *traceStmt) Close() error  { return s.stmt.Close() }
func (s *traceStmt) NumInput() int { return s.stmt.NumInput() }

// Exec only satisfies driver.Stmt; statements that write are refused before reaching SQLite.
func (s *traceStmt) Exec([]driver.Value) (driver.Result, error) {
	s.logger.Warn("sql write refused", "sql", s.query)
	return nil, errReadOnly
}

func (s *traceStmt) ExecContext(context.Context, []driver.NamedValue) (driver.Result, error) {
	return s.Exec(nil)
}

func (s *traceStmt) Query(args []driver.Value) (driver.Rows, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return s.QueryContext(context.Background(), named)
}

func (s *traceStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	s.logger.Debug("sql", "op", "query", "sql", s.query, "args", formatArgs(args))

	var (
		rows driver.Rows
		err  error
	)
	if q, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = q.QueryContext(ctx, args)
	} else {
		vals := make([]driver.Value, len(args))
		for i := range args {
			vals[i] = args[i].Value
		}
		//nolint:staticcheck // SA1019
		rows, err = s.stmt.Query(vals)
	}
	if err != nil {
		return nil, err
	}
	return &countingRows{Rows: rows, query: s.query, logger: s.logger, start: time.Now()}, nil
}

// countingRows logs how many rows were read once the result set is closed.
type countingRows struct {
	driver.Rows
	query  string
	logger *slog.Logger
	start  time.Time
	n      int
	closed bool
}

func (r *countingRows) Next(dest []driver.Value) error {
	err := r.Rows.Next(dest)
	if err == nil {
		r.n++
	} else if !errors.Is(err, io.EOF) {
		r.logger.Debug("sql row", "sql", r.query, "row", r.n+1, "error", err)
	}
	return err
}

func (r *countingRows) Close() error {
	if !r.closed {
		r.closed = true
		r.logger.Debug("sql done", "sql", r.query, "rows", r.n, "took", time.Since(r.start))
	}
	return r.Rows.Close()
}

func formatArgs(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		v := "NULL"
		switch t := a.Value.(type) {
		case nil:
		case []byte:
			v = string(t)
		default:
			v = fmt.Sprint(t)
		}
		if a.Name != "" {
			v = a.Name + "=" + v
		}
		out[i] = v
	}
	return out
}
