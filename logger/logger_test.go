package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/nathoo/gamedisk/config"
)

func TestSetupWriter_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := SetupWriter(&config.Config{LogLevel: "info", LogFormat: "json"}, &buf)
	WithError(WithSession(l, "abc"), errors.New("boom")).Info("saved", "slot", "quick")
	slog.Debug("hidden")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("not a single JSON record: %v\n%s", err, buf.String())
	}
	if rec["msg"] != "saved" || rec["session"] != "abc" || rec["error"] != "boom" || rec["slot"] != "quick" {
		t.Errorf("record = %v", rec)
	}
}

func TestSetupWriter_TextLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&config.Config{LogLevel: "warn", LogFormat: "text"}, &buf)
	slog.Info("quiet")
	slog.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "msg=loud") {
		t.Errorf("output = %q", out)
	}
}
