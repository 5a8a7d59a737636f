package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlain(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	h := NewPrettyHandler(buf, &slog.HandlerOptions{Level: level})
	h.noColor = true
	return slog.New(h)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})
	logger.Info("server started", "port", 4000)

	assert.Contains(t, buf.String(), `"msg":"server started"`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"port":4000`)
}

func TestNew_FormatFromEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Environment: tt.environment, Writer: &buf, Level: slog.LevelInfo}).Info("hello")

			isJSON := strings.HasPrefix(strings.TrimSpace(buf.String()), "{")
			assert.Equal(t, tt.wantJSON, isJSON, buf.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	newPlain(&buf, slog.LevelInfo).Info("cache claimed", "user", "user-1", "first", true, "distance", 0.5)

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "INF cache claimed user=user-1 first=true distance=0.5")
	assert.NotContains(t, line, "\033[")
}

func TestPrettyHandler_Colors(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Warn("careful")

	assert.Contains(t, buf.String(), colorYellow+"WRN"+colorReset)
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newPlain(&buf, slog.LevelWarn)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	out := buf.String()
	assert.NotContains(t, out, "DBG")
	assert.NotContains(t, out, "INF")
	assert.Contains(t, out, "WRN warn")
	assert.Contains(t, out, "ERR error")
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := newPlain(&buf, slog.LevelInfo)

	logger.With("service", "api").
		WithGroup("req").
		With("id", "abc").
		Info("handled", "status", 201, slog.Group("geo", "lat", 52.5))

	line := buf.String()
	assert.Contains(t, line, "service=api")
	assert.Contains(t, line, "req.id=abc")
	assert.Contains(t, line, "req.status=201")
	assert.Contains(t, line, "req.geo.lat=52.5")
}

func TestPrettyHandler_EmptyGroupIsNoop(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, h.WithGroup(""))
	assert.Same(t, h, h.WithAttrs(nil))
}

func TestPrettyHandler_WithAttrsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := newPlain(&buf, slog.LevelInfo)

	base.With("a", 1).Info("first")
	base.With("b", 2).Info("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "a=1")
	assert.NotContains(t, lines[1], "a=1")
	assert.Contains(t, lines[1], "b=2")
}

func TestPrettyHandler_Source(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true})
	slog.New(h).Info("where")

	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestPrettyHandler_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := newPlain(&buf, slog.LevelInfo)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("tick", "n", i)
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 20)
	for _, l := range lines {
		assert.Contains(t, l, "INF tick n=")
	}
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2026, 4, 5, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		v    slog.Value
		want string
	}{
		{"plain string", slog.StringValue("egg"), "egg"},
		{"string with space", slog.StringValue("Egg Hunt"), `"Egg Hunt"`},
		{"empty string", slog.StringValue(""), `""`},
		{"int", slog.IntValue(42), "42"},
		{"bool", slog.BoolValue(false), "false"},
		{"duration", slog.DurationValue(1500 * time.Millisecond), "1.5s"},
		{"time", slog.TimeValue(ts), "2026-04-05T10:30:00Z"},
		{"error", slog.AnyValue(errors.New("disk full")), `"disk full"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.v))
		})
	}
}

func TestFormatLevel(t *testing.T) {
	s, c := formatLevel(slog.LevelError)
	assert.Equal(t, "ERR", s)
	assert.Equal(t, colorRed, c)

	s, c = formatLevel(slog.LevelInfo + 2)
	assert.Equal(t, "INFO+2", s)
	assert.Equal(t, colorGray, c)
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf, Format: "json", Level: slog.LevelDebug})

	logger.Component("claims").WithField("cache_id", "cache-1").WithError(errors.New("boom")).Debug("failed")

	out := buf.String()
	assert.Contains(t, out, `"component":"claims"`)
	assert.Contains(t, out, `"cache_id":"cache-1"`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestLogger_WithNilError(t *testing.T) {
	logger := Discard()
	assert.Same(t, logger, logger.WithError(nil))
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestFromEnvironment(t *testing.T) {
	l := FromEnvironment("production", "warn")
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, l.Enabled(context.Background(), slog.LevelWarn))
}
