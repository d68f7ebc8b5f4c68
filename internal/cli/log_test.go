package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	if logger == nil {
		t.Fatal("newLogger returned nil")
	}

	logger.Info("starting placement")
	if buf.Len() == 0 {
		t.Error("logger wrote nothing")
	}
}

func TestNewLoggerLevelFilter(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info passes at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("annealing run 1") },
			wantLog: true,
		},
		{
			name:    "debug filtered at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("step 240 cost 1.02") },
			wantLog: false,
		},
		{
			name:    "debug passes at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("step 240 cost 1.02") },
			wantLog: true,
		},
		{
			name:    "warn passes at warn level",
			level:   log.WarnLevel,
			logFunc: func(l *log.Logger) { l.Warn("cache refresh forced") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	if prog == nil {
		t.Fatal("newProgress returned nil")
	}

	// Make the elapsed duration measurable.
	time.Sleep(10 * time.Millisecond)
	prog.done("Placed 4 macros")

	out := buf.String()
	if !strings.Contains(out, "Placed 4 macros") {
		t.Errorf("done output %q missing message", out)
	}
	if !strings.Contains(out, "(") {
		t.Errorf("done output %q missing elapsed duration", out)
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext returned a different logger")
	}

	loggerFromContext(ctx).Info("cache hit")
	if buf.Len() == 0 {
		t.Error("retrieved logger wrote nothing")
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext should fall back to the default logger")
	}
}
