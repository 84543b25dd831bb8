// Package logger provides structured logging for gridframe.
//
// Log output goes to stderr unless configured otherwise: the CLI writes
// dataframes to stdout.
package logger

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridframe/gridframe/pkg/errors"
)

var (
	globalLogger *zap.Logger
	once         sync.Once
)

// contextKey is the type for context keys
type contextKey string

const (
	// CallIDKey is the context key for the id of one Get or Update call
	CallIDKey contextKey = "call_id"
	// ElementTypeKey is the context key for the element type being projected
	ElementTypeKey contextKey = "element_type"
	// NetworkIDKey is the context key for the network id
	NetworkIDKey contextKey = "network_id"
)

var contextKeys = []contextKey{CallIDKey, ElementTypeKey, NetworkIDKey}

// WithValue stores a logging field in ctx for WithContext.
func WithValue(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

// Config represents logger configuration
type Config struct {
	Level       string
	Development bool
	Encoding    string // json or console
	OutputPaths []string
}

// Init builds the global logger. Only the first call has an effect.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		globalLogger, err = build(cfg)
	})
	return err
}

func build(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid log level").WithDetail("level", cfg.Level)
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.MessageKey = "message"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	zc.Encoding = "json"
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	zc.OutputPaths = []string{"stderr"}
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to build logger").WithDetail("encoding", zc.Encoding)
	}
	return l, nil
}

// Get returns the global logger, initializing it at info level when Init
// was never called.
func Get() *zap.Logger {
	if globalLogger == nil {
		if err := Init(Config{Level: "info"}); err != nil || globalLogger == nil {
			globalLogger = zap.NewNop()
		}
	}
	return globalLogger
}

// Set replaces the global logger. Tests use it to observe log output.
func Set(l *zap.Logger) {
	once.Do(func() {})
	globalLogger = l
}

// WithContext returns the global logger carrying the call fields stored
// in ctx.
func WithContext(ctx context.Context) *zap.Logger {
	l := Get()
	for _, key := range contextKeys {
		if v, ok := ctx.Value(key).(string); ok {
			l = l.With(zap.String(string(key), v))
		}
	}
	return l
}

// ErrorFields returns the error, its type and its details sorted by key.
func ErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var e *errors.Error
	if !errors.As(err, &e) {
		return fields
	}
	fields = append(fields, zap.String("error_type", string(e.Type)))
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, e.Details[k]))
	}
	return fields
}

// Sync flushes buffered entries.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
