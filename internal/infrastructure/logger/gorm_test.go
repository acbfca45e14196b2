package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(level)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func itemsQuery() (string, int64) {
	return "SELECT * FROM menu_items WHERE tenant_id = $1 ORDER BY name", 12
}

func TestGormLogger(t *testing.T) {
	t.Run("options override the defaults", func(t *testing.T) {
		gl, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info,
			WithSlowThreshold(500*time.Millisecond),
			WithIgnoreRecordNotFoundError(false),
		)

		assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
		assert.False(t, gl.ignoreRecordNotFoundError)
	})

	t.Run("LogMode returns a copy", func(t *testing.T) {
		gl, _ := newObservedGormLogger(zapcore.InfoLevel, gormlogger.Info)

		changed := gl.LogMode(gormlogger.Warn)

		assert.Equal(t, gormlogger.Info, gl.logLevel)
		require.IsType(t, &GormLogger{}, changed)
		assert.Equal(t, gormlogger.Warn, changed.(*GormLogger).logLevel)
	})

	t.Run("level methods respect the configured level", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Warn)

		gl.Info(context.Background(), "migrated %d rows", 7)
		assert.Empty(t, recorded.All())

		gl.Warn(context.Background(), "connection pool at %d%%", 90)
		require.Len(t, recorded.All(), 1)
		assert.Contains(t, recorded.All()[0].Message, "connection pool at 90%")
	})
}

func TestGormLoggerTrace(t *testing.T) {
	t.Run("query error logs with the statement", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), itemsQuery, errors.New("relation does not exist"))

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Message, "SQL Error")
	})

	t.Run("record not found is ignored by default", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.ErrorLevel, gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), itemsQuery, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("queries over the threshold log as slow", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.WarnLevel, gormlogger.Warn,
			WithSlowThreshold(time.Nanosecond))

		gl.Trace(context.Background(), time.Now().Add(-time.Second), itemsQuery, nil)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Message, "SLOW SQL")
	})

	t.Run("normal queries log at debug", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)

		gl.Trace(context.Background(), time.Now(), itemsQuery, nil)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Message, "SQL Query")
	})

	t.Run("silent level logs nothing", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), itemsQuery, nil)

		assert.Empty(t, recorded.All())
	})

	t.Run("request ID from the context rides on the trace", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(zapcore.DebugLevel, gormlogger.Info)
		ctx := context.WithValue(context.Background(), RequestIDKey, "req-4421")

		gl.Trace(ctx, time.Now(), itemsQuery, nil)

		entries := recorded.All()
		require.Len(t, entries, 1)
		found := false
		for _, field := range entries[0].Context {
			if field.Key == "request_id" {
				found = true
				assert.Equal(t, "req-4421", field.String)
			}
		}
		assert.True(t, found)
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
