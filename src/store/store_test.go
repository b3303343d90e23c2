package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iafilius/LeituraViewer/src/leitura"
)

const testSchema = `
CREATE TABLE leitura (
  id          INTEGER PRIMARY KEY,
  datahora    TEXT,
  temperatura REAL,
  umidade     REAL,
  temp_cpu    REAL
);`

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu    sync.Mutex
	attrs []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := make(map[string]slog.Value)
	m["msg"] = slog.StringValue(r.Message)
	m["level"] = slog.StringValue(r.Level.String())
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.attrs = append(h.attrs, m)
	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(_ string) slog.Handler { return h }

func (h *captureHandler) recordsFor(msg string) []map[string]slog.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]slog.Value
	for _, m := range h.attrs {
		if m["msg"].String() == msg {
			out = append(out, m)
		}
	}
	return out
}

// createDB writes a readings database under t.TempDir and returns its path.
func createDB(t *testing.T, schema string, inserts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leituras.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Fatalf("close db: %v", closeErr)
		}
	}()
	if schema != "" {
		if _, err := db.Exec(schema); err != nil {
			t.Fatalf("exec schema: %v", err)
		}
	}
	for _, q := range inserts {
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("exec %q: %v", q, err)
		}
	}
	return path
}

func quietOptions() Options {
	return Options{
		Logger:   slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		Location: time.UTC,
	}
}

func TestLoad_EmptyTable(t *testing.T) {
	path := createDB(t, testSchema)
	res, err := Load(path, quietOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Records) != 0 || res.Skipped != 0 {
		t.Fatalf("got %d records, %d skipped; want 0, 0", len(res.Records), res.Skipped)
	}
	if res.Path != path {
		t.Errorf("Path = %q, want %q", res.Path, path)
	}
}

func TestLoad_BothTimestampLayouts(t *testing.T) {
	path := createDB(t, testSchema,
		`INSERT INTO leitura (id, datahora, temperatura, umidade, temp_cpu) VALUES
		 (1, '01/01/2024 12:00:00', 20.0, 55.0, 41.0),
		 (2, '01/01/2024 13:00',    22.0, 50.0, 43.5)`)

	res, err := Load(path, quietOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(res.Records))
	}
	want := []leitura.Record{
		{ID: 1, Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), Temperature: 20, Humidity: 55, CPUTemperature: 41},
		{ID: 2, Timestamp: time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC), Temperature: 22, Humidity: 50, CPUTemperature: 43.5},
	}
	for i, w := range want {
		got := res.Records[i]
		if got.ID != w.ID || !got.Timestamp.Equal(w.Timestamp) ||
			got.Temperature != w.Temperature || got.Humidity != w.Humidity || got.CPUTemperature != w.CPUTemperature {
			t.Errorf("record %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestLoad_SkipsUnparseableTimestamps(t *testing.T) {
	path := createDB(t, testSchema,
		`INSERT INTO leitura (id, datahora, temperatura, umidade, temp_cpu) VALUES
		 (1, '01/01/2024 12:00:00', 20.0, 55.0, 41.0),
		 (2, '2024-01-01 12:30:00', 21.0, 54.0, 42.0),
		 (3, NULL,                  21.0, 54.0, 42.0),
		 (4, 'ontem',               21.0, 54.0, 42.0),
		 (5, '01/01/2024 13:00  ',  22.0, 50.0, 43.0)`)

	h := &captureHandler{}
	opts := Options{Logger: slog.New(h), Location: time.UTC}
	res, err := Load(path, opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", res.Skipped)
	}
	if len(res.Records) != 2 || res.Records[0].ID != 1 || res.Records[1].ID != 5 {
		t.Fatalf("records = %+v, want ids 1 and 5", res.Records)
	}

	warns := h.recordsFor("skipped readings with unparseable datahora")
	if len(warns) != 1 {
		t.Fatalf("expected one warn record, got %d", len(warns))
	}
	if got := warns[0]["skipped"].Int64(); got != 3 {
		t.Errorf("warn skipped = %d, want 3", got)
	}
	if got := warns[0]["level"].String(); got != "WARN" {
		t.Errorf("warn level = %q", got)
	}
}

func TestLoad_NullMeasurementsBecomeNaN(t *testing.T) {
	path := createDB(t, testSchema,
		`INSERT INTO leitura (id, datahora, temperatura, umidade, temp_cpu) VALUES
		 (1, '01/01/2024 12:00:00', NULL, 55.0, NULL)`)

	res, err := Load(path, quietOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}
	r := res.Records[0]
	if !math.IsNaN(r.Temperature) || !math.IsNaN(r.CPUTemperature) {
		t.Errorf("NULL measurements should be NaN, got %+v", r)
	}
	if r.Humidity != 55 {
		t.Errorf("Humidity = %v, want 55", r.Humidity)
	}
}

func TestLoad_KeepsQueryOrder(t *testing.T) {
	// ORDER BY on the text column is not chronological for dd/mm/yyyy; the loader must not re-sort.
	path := createDB(t, testSchema,
		`INSERT INTO leitura (id, datahora, temperatura, umidade, temp_cpu) VALUES
		 (1, '10/12/2023 08:00', 1.0, 1.0, 1.0),
		 (2, '02/01/2024 09:00', 2.0, 2.0, 2.0)`)

	res, err := Load(path, quietOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(res.Records))
	}
	if res.Records[0].ID != 2 || res.Records[1].ID != 1 {
		t.Errorf("order = [%d %d], want [2 1]", res.Records[0].ID, res.Records[1].ID)
	}
}

func TestLoad_TextOrderAcrossMonths(t *testing.T) {
	path := createDB(t, testSchema,
		`INSERT INTO leitura (id, datahora, temperatura, umidade, temp_cpu) VALUES
		 (1, '5/1/2024 10:00',   1.0, 1.0, 1.0),
		 (2, '31/01/2024 23:00', 2.0, 2.0, 2.0),
		 (3, '01/02/2024 00:00', 3.0, 3.0, 3.0)`)

	res, err := Load(path, quietOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var ids []int64
	for _, r := range res.Records {
		ids = append(ids, int64(r.ID))
	}
	want := []int64{3, 2, 1}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v (column text order, not time order)", ids, want)
		}
	}
}

func TestLoad_MissingTable(t *testing.T) {
	path := createDB(t, `CREATE TABLE outra (x INTEGER);`)
	_, err := Load(path, quietOptions())
	var dae *leitura.DataAccessError
	if !errors.As(err, &dae) {
		t.Fatalf("expected DataAccessError, got %v", err)
	}
	if dae.Op != "query" {
		t.Errorf("Op = %q, want query", dae.Op)
	}
	if dae.Path != path {
		t.Errorf("Path = %q, want %q", dae.Path, path)
	}
	if !strings.Contains(err.Error(), "leitura") {
		t.Errorf("error should name the missing table: %v", err)
	}
}

func TestLoad_MissingFileIsNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nao-existe.db")
	_, err := Load(path, quietOptions())
	var dae *leitura.DataAccessError
	if !errors.As(err, &dae) {
		t.Fatalf("expected DataAccessError, got %v", err)
	}
	if dae.Op != "open" {
		t.Errorf("Op = %q, want open", dae.Op)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("read-only load must not create %s (stat err %v)", path, statErr)
	}
}

func TestLoad_SQLDebugLogsStatements(t *testing.T) {
	path := createDB(t, testSchema,
		`INSERT INTO leitura (id, datahora, temperatura, umidade, temp_cpu) VALUES
		 (1, '01/01/2024 12:00:00', 20.0, 55.0, 41.0)`)

	h := &captureHandler{}
	res, err := Load(path, Options{Logger: slog.New(h), SQLDebug: true, Location: time.UTC})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(res.Records))
	}

	recs := h.recordsFor("sql")
	if len(recs) == 0 {
		t.Fatal("expected at least one sql log record")
	}
	found := false
	for _, r := range recs {
		if r["op"].String() == "query" && strings.Contains(r["sql"].String(), "FROM leitura") {
			found = true
		}
	}
	if !found {
		t.Errorf("no query record for the readings select: %v", recs)
	}

	done := h.recordsFor("sql done")
	if len(done) != 1 {
		t.Fatalf("expected one sql done record, got %d", len(done))
	}
	if got := done[0]["rows"].Int64(); got != 1 {
		t.Errorf("sql done rows = %d, want 1", got)
	}
}

func TestLoggingConnector_RefusesWrites(t *testing.T) {
	path := createDB(t, testSchema)
	h := &captureHandler{}
	conn, err := NewLoggingConnector(buildDSN(path), slog.New(h))
	if err != nil {
		t.Fatalf("NewLoggingConnector: %v", err)
	}
	db := sql.OpenDB(conn)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO leitura (id, datahora, temperatura, umidade, temp_cpu) VALUES (1, '01/01/2024 12:00', 1, 2, 3)`)
	if !errors.Is(err, errReadOnly) {
		t.Fatalf("Exec error = %v, want errReadOnly", err)
	}
	if len(h.recordsFor("sql write refused")) != 1 {
		t.Errorf("expected the refused write to be logged")
	}
	if _, err := db.Begin(); !errors.Is(err, errReadOnly) {
		t.Fatalf("Begin error = %v, want errReadOnly", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM leitura`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0 after refused insert", n)
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/leituras.db", "file:/data/leituras.db?mode=ro&_busy_timeout=5000"},
		{"/tmp/a#b?.db", "file:/tmp/a%23b%3f.db?mode=ro&_busy_timeout=5000"},
		{"/tmp/100%.db", "file:/tmp/100%25.db?mode=ro&_busy_timeout=5000"},
		{"file:/data/x.db", "file:/data/x.db?mode=ro&_busy_timeout=5000"},
		{"file:/data/x.db?cache=shared", "file:/data/x.db?cache=shared&mode=ro&_busy_timeout=5000"},
	}
	for _, tt := range tests {
		if got := buildDSN(tt.path); got != tt.want {
			t.Errorf("buildDSN(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoggingDriver_OpenRejected(t *testing.T) {
	c, err := NewLoggingConnector("file::memory:", nil)
	if err != nil {
		t.Fatalf("NewLoggingConnector: %v", err)
	}
	if _, err := c.Driver().Open("x"); err == nil {
		t.Fatal("expected Open via driver to be rejected")
	}
}
