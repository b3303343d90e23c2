package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/iafilius/LeituraViewer/src/config"
)

// swapDefault installs a JSON logger writing into buf for the duration of the test.
func swapDefault(t *testing.T, buf *bytes.Buffer, level slog.Level) {
	t.Helper()
	saved := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(saved) })
}

func TestInfof_NoDoubleFormattingWithPercent(t *testing.T) {
	var buf bytes.Buffer
	swapDefault(t, &buf, slog.LevelInfo)

	msg := "leituras.db: 100.0% das linhas com datahora válida (0 ignoradas)"
	Infof(msg)

	out := buf.String()
	if !strings.Contains(out, "100.0% das linhas") {
		t.Fatalf("log output missing expected percent segment: %s", out)
	}
	if strings.Contains(out, "%!d(MISSING)") || strings.Contains(out, "MISSING") {
		t.Fatalf("log output still shows fmt artifact: %s", out)
	}
}

func TestLevelHelpers_RespectLevel(t *testing.T) {
	var buf bytes.Buffer
	swapDefault(t, &buf, slog.LevelWarn)

	Debugf("debug %d", 1)
	Infof("info %d", 2)
	Warnf("warn %d", 3)
	Errorf("error %d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines at warn level, got %d: %s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["msg"] != "warn 3" || rec["level"] != "WARN" {
		t.Fatalf("unexpected first record: %v", rec)
	}
}

func TestNewWithWriter_ProdIsJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}
	l := NewWithWriter(&buf, cfg, "1.2.3", "leituraviewer")
	l.Info("loaded", "records", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if rec["app"] != "leituraviewer" || rec["version"] != "1.2.3" || rec["env"] != "prod" {
		t.Fatalf("missing base attributes: %v", rec)
	}
	if rec["records"] != float64(3) {
		t.Fatalf("records attr = %v", rec["records"])
	}
}

func TestNewWithWriter_DevUsesTint(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}
	l := NewWithWriter(&buf, cfg, "dev", "leiturareader")
	TimeTrack(l, time.Now().Add(-time.Second), "load")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("dev logger should not emit JSON: %s", out)
	}
	// tint wraps keys in ANSI codes, so look for the pieces separately
	if !strings.Contains(out, "timing") || !strings.Contains(out, "phase=") || !strings.Contains(out, "load") {
		t.Fatalf("unexpected tint output: %s", out)
	}
}
