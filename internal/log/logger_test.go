package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("expected default format 'json', got %q", cfg.Format)
	}
	if cfg.Output != os.Stderr {
		t.Errorf("expected default output to be os.Stderr")
	}
	if cfg.AddSource {
		t.Errorf("expected default AddSource to be false")
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected *Config
	}{
		{
			name:    "defaults when no env vars",
			envVars: map[string]string{},
			expected: &Config{
				Level:  "info",
				Format: FormatJSON,
				Output: os.Stderr,
			},
		},
		{
			name:    "LOG_LEVEL=debug",
			envVars: map[string]string{"LOG_LEVEL": "debug"},
			expected: &Config{
				Level:  "debug",
				Format: FormatJSON,
				Output: os.Stderr,
			},
		},
		{
			name:    "LOG_LEVEL is case insensitive",
			envVars: map[string]string{"LOG_LEVEL": "WARN"},
			expected: &Config{
				Level:  "warn",
				Format: FormatJSON,
				Output: os.Stderr,
			},
		},
		{
			name: "DYNAMICS_LOG_LEVEL beats LOG_LEVEL",
			envVars: map[string]string{
				"DYNAMICS_LOG_LEVEL": "trace",
				"LOG_LEVEL":          "error",
			},
			expected: &Config{
				Level:  "trace",
				Format: FormatJSON,
				Output: os.Stderr,
			},
		},
		{
			name:    "LOG_FORMAT=text",
			envVars: map[string]string{"LOG_FORMAT": "text"},
			expected: &Config{
				Level:  "info",
				Format: FormatText,
				Output: os.Stderr,
			},
		},
		{
			name:    "LOG_SOURCE=1",
			envVars: map[string]string{"LOG_SOURCE": "1"},
			expected: &Config{
				Level:     "info",
				Format:    FormatJSON,
				Output:    os.Stderr,
				AddSource: true,
			},
		},
		{
			name:    "DYNAMICS_DEBUG enables debug and source",
			envVars: map[string]string{"DYNAMICS_DEBUG": "true"},
			expected: &Config{
				Level:     "debug",
				Format:    FormatJSON,
				Output:    os.Stderr,
				AddSource: true,
			},
		},
		{
			name: "DYNAMICS_DEBUG beats explicit level",
			envVars: map[string]string{
				"DYNAMICS_DEBUG": "1",
				"LOG_LEVEL":      "error",
			},
			expected: &Config{
				Level:     "debug",
				Format:    FormatJSON,
				Output:    os.Stderr,
				AddSource: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DYNAMICS_DEBUG", "DYNAMICS_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE"} {
				t.Setenv(key, "")
				os.Unsetenv(key)
			}
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg := FromEnv()

			if cfg.Level != tt.expected.Level {
				t.Errorf("Level = %q, want %q", cfg.Level, tt.expected.Level)
			}
			if cfg.Format != tt.expected.Format {
				t.Errorf("Format = %q, want %q", cfg.Format, tt.expected.Format)
			}
			if cfg.AddSource != tt.expected.AddSource {
				t.Errorf("AddSource = %v, want %v", cfg.AddSource, tt.expected.AddSource)
			}
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	logger.Info("hello", slog.String(EndpointKey, "e1"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
	if entry[EndpointKey] != "e1" {
		t.Errorf("%s = %v, want e1", EndpointKey, entry[EndpointKey])
	}
}

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatText, Output: &buf})

	logger.Info("hello")

	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("expected text format, got: %s", buf.String())
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "warn", Format: FormatJSON, Output: &buf})

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	lines := strings.Count(strings.TrimSpace(buf.String()), "\n") + 1
	if buf.Len() == 0 {
		t.Fatal("warn entry should be emitted")
	}
	if lines != 1 {
		t.Errorf("expected a single entry, got %d:\n%s", lines, buf.String())
	}
}

func TestNew_NilConfig(t *testing.T) {
	if logger := New(nil); logger == nil {
		t.Fatal("nil config should produce a default logger")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	WithOperation(WithComponent(logger, "registry"), "e1", "create_account").Info("done")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["component"] != "registry" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry[EndpointKey] != "e1" {
		t.Errorf("%s = %v", EndpointKey, entry[EndpointKey])
	}
	if entry[OperationKey] != "create_account" {
		t.Errorf("%s = %v", OperationKey, entry[OperationKey])
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"eyJhbGciOiJSUzI1NiJ9.payload.sig1234", "...1234"},
		{"abcd", "[REDACTED]"},
		{"abc", "[REDACTED]"},
		{"", "[REDACTED]"},
	}

	for _, tt := range tests {
		if got := SanitizeToken(tt.token); got != tt.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestSanitizeSecret(t *testing.T) {
	if got := SanitizeSecret("super-secret"); got != "[REDACTED]" {
		t.Errorf("SanitizeSecret = %q, want [REDACTED]", got)
	}
}
