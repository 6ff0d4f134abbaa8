package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSecureHandler_maskSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "api key attribute", key: "api_key", value: "AIzaSyA0000000000000000000000000000000"},
		{name: "search api key attribute", key: "search_api_key", value: "supersecret"},
		{name: "authorization header", key: "authorization", value: "Bearer abc123"},
		{name: "reporter contact", key: "reporter_contact", value: "alice@example.com"},
		{name: "user contact", key: "user_contact", value: "+923001234567"},
		{name: "password keyword inside key", key: "db_password", value: "hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
			logger.Info("test", tt.key, tt.value)

			out := buf.String()
			if strings.Contains(out, tt.value) {
				t.Errorf("output leaked sensitive value %q: %s", tt.value, out)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("output missing mask %q: %s", MaskValue, out)
			}
		})
	}
}

func TestSecureHandler_preservesWorkingData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "entity key", key: "entity_key", value: "example.com/shop"},
		{name: "query", key: "query", value: "\"example.com\" scam"},
		{name: "seller phone", key: "seller_phone", value: "+923001234567"},
		{name: "status", key: "status", value: "High"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
			logger.Info("test", tt.key, tt.value)

			if strings.Contains(buf.String(), MaskValue) {
				t.Errorf("non-sensitive attribute %q was masked: %s", tt.key, buf.String())
			}
		})
	}
}

func TestSecureHandler_maskSensitiveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{name: "google api key shape", value: "AIzaSyB1111111111111111111111111111111"},
		{name: "jwt", value: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.c2ln"},
		{name: "bearer token", value: "Bearer xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
			logger.Info("test", "value", tt.value)

			if strings.Contains(buf.String(), tt.value) {
				t.Errorf("output leaked credential-shaped value: %s", buf.String())
			}
		})
	}
}

func TestSecureHandler_sanitizesGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
	logger.Info("test", slog.Group("search", slog.String("api_key", "topsecret"), slog.String("cx", "engine1")))

	out := buf.String()
	if strings.Contains(out, "topsecret") {
		t.Errorf("group attribute leaked secret: %s", out)
	}
	if !strings.Contains(out, "engine1") {
		t.Errorf("group attribute cx should not be masked: %s", out)
	}
}

func TestSecureHandler_withAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewTextHandler(&buf, nil)))
	logger = logger.With("api_key", "persistentsecret")
	logger.Info("test")

	if strings.Contains(buf.String(), "persistentsecret") {
		t.Errorf("WithAttrs leaked secret: %s", buf.String())
	}
}

func TestNewSecureLogger_levels(t *testing.T) {
	t.Parallel()

	t.Run("default suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)
		logger.Info("hidden")
		logger.Warn("visible")

		if strings.Contains(buf.String(), "hidden") {
			t.Errorf("info record should be suppressed: %s", buf.String())
		}
		if !strings.Contains(buf.String(), "visible") {
			t.Errorf("warn record should be emitted: %s", buf.String())
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)
		logger.Debug("detail")

		if !strings.Contains(buf.String(), "detail") {
			t.Errorf("debug record should be emitted when verbose: %s", buf.String())
		}
	})
}
