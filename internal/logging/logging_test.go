package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewFile(t *testing.T) {
	t.Run("creates nested directory and writes logfmt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "taskpage.log")

		logger, closer, err := NewFile(path, Options{Level: log.DebugLevel, Prefix: "api"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Debug("request", "method", "GET", "status", 200)
		if err := closer.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("log file not created: %v", err)
		}
		got := string(data)
		for _, want := range []string{"msg=request", "method=GET", "status=200", "prefix=api"} {
			if !strings.Contains(got, want) {
				t.Errorf("log line %q missing %q", got, want)
			}
		}
	})

	t.Run("empty path returns error", func(t *testing.T) {
		if _, _, err := NewFile("", Options{}); err == nil {
			t.Fatal("expected error for empty path")
		}
	})

	t.Run("level filters", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "taskpage.log")
		logger, closer, err := NewFile(path, Options{Level: log.WarnLevel})
		if err != nil {
			t.Fatal(err)
		}
		logger.Info("hidden")
		logger.Warn("shown")
		closer.Close()

		data, _ := os.ReadFile(path)
		if strings.Contains(string(data), "hidden") || !strings.Contains(string(data), "shown") {
			t.Errorf("unexpected log content: %q", data)
		}
	})
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsole(&buf, Options{Prefix: "devserver"})
	logger.Info("listening", "addr", "127.0.0.1:8000")

	got := buf.String()
	if !strings.Contains(got, "listening") || !strings.Contains(got, "addr=127.0.0.1:8000") {
		t.Errorf("console output: %q", got)
	}
}

func TestDiscard(t *testing.T) {
	// must not panic
	Discard().Error("dropped", "err", "x")
}
