package logger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// CorrelationIDHeader is the HTTP header carrying the request correlation ID
	CorrelationIDHeader = "X-Correlation-ID"
	// CorrelationIDFieldKey is the field key used for correlation ID in log entries
	CorrelationIDFieldKey = "correlation_id"
)

type contextKey string

const correlationIDContextKey contextKey = "correlation_id"

// LogField represents a structured log field with concrete types
type LogField struct {
	Key   string
	Value string
}

// Logger is the structured logger used across the service
type Logger interface {
	Info(msg string, fields ...LogField)
	Error(msg string, fields ...LogField)
	Debug(msg string, fields ...LogField)
	Warn(msg string, fields ...LogField)
	WithFields(fields ...LogField) Logger
	WithCorrelationID(id string) Logger
}

// Config represents logger configuration
type Config struct {
	Level   Level
	Format  string
	Service string
	Output  io.Writer // defaults to os.Stdout
}

type logger struct {
	logrus *logrus.Logger
	fields []LogField
}

// NewLogger creates a new logger instance with the given configuration
func NewLogger(config Config) Logger {
	l := logrus.New()

	if config.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	if config.Output != nil {
		l.SetOutput(config.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	switch config.Level {
	case DebugLevel:
		l.SetLevel(logrus.DebugLevel)
	case WarnLevel:
		l.SetLevel(logrus.WarnLevel)
	case ErrorLevel:
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}

	var fields []LogField
	if config.Service != "" {
		fields = []LogField{{Key: "service", Value: config.Service}}
	}

	return &logger{logrus: l, fields: fields}
}

// NewNopLogger returns a logger that discards everything. Handy in tests.
func NewNopLogger() Logger {
	return NewLogger(Config{Level: ErrorLevel, Output: io.Discard})
}

// WithFields returns a new logger with additional fields (immutable)
func (l *logger) WithFields(fields ...LogField) Logger {
	merged := make([]LogField, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &logger{logrus: l.logrus, fields: merged}
}

// WithCorrelationID returns a new logger with correlation ID field
func (l *logger) WithCorrelationID(id string) Logger {
	return l.WithFields(CorrelationIDField(id))
}

func (l *logger) Info(msg string, fields ...LogField)  { l.log(logrus.InfoLevel, msg, fields...) }
func (l *logger) Error(msg string, fields ...LogField) { l.log(logrus.ErrorLevel, msg, fields...) }
func (l *logger) Debug(msg string, fields ...LogField) { l.log(logrus.DebugLevel, msg, fields...) }
func (l *logger) Warn(msg string, fields ...LogField)  { l.log(logrus.WarnLevel, msg, fields...) }

func (l *logger) log(level logrus.Level, msg string, fields ...LogField) {
	if !l.logrus.IsLevelEnabled(level) {
		return
	}

	all := make(logrus.Fields, len(l.fields)+len(fields))
	for _, f := range l.fields {
		all[f.Key] = f.Value
	}
	for _, f := range fields {
		all[f.Key] = f.Value
	}

	l.logrus.WithFields(all).Log(level, msg)
}

// StringField returns a LogField for a string value.
func StringField(key, value string) LogField {
	return LogField{Key: key, Value: value}
}

// IntField returns a LogField for an integer value.
func IntField(key string, value int) LogField {
	return LogField{Key: key, Value: strconv.Itoa(value)}
}

// BoolField returns a LogField for a boolean value.
func BoolField(key string, value bool) LogField {
	return LogField{Key: key, Value: strconv.FormatBool(value)}
}

// DurationField returns a LogField for a time.Duration value.
func DurationField(key string, value time.Duration) LogField {
	return LogField{Key: key, Value: value.String()}
}

// ErrorField returns a LogField for an error value.
func ErrorField(err error) LogField {
	if err == nil {
		return LogField{Key: "error", Value: "<nil>"}
	}
	return LogField{Key: "error", Value: err.Error()}
}

// Field creates a log field with automatic type conversion for less common types
func Field[T any](key string, value T) LogField {
	return LogField{Key: key, Value: convertValue(value)}
}

func convertValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case time.Duration:
		return v.String()
	case error:
		if v == nil {
			return "<nil>"
		}
		return v.Error()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// CorrelationIDField returns a LogField for a correlation ID.
func CorrelationIDField(id string) LogField {
	return StringField(CorrelationIDFieldKey, id)
}

// HTTPMethodField returns a LogField for an HTTP method.
func HTTPMethodField(method string) LogField {
	return StringField("http_method", method)
}

// HTTPPathField returns a LogField for an HTTP path.
func HTTPPathField(path string) LogField {
	return StringField("http_path", path)
}

// HTTPStatusField returns a LogField for an HTTP status code.
func HTTPStatusField(status int) LogField {
	return IntField("http_status", status)
}

// ClientIPField returns a LogField for a client IP address.
func ClientIPField(ip string) LogField {
	return StringField("client_ip", ip)
}

// WithCorrelationIDContext adds correlation ID to context
func WithCorrelationIDContext(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey, correlationID)
}

// GetCorrelationIDFromContext retrieves correlation ID from context
func GetCorrelationIDFromContext(ctx context.Context) string {
	if correlationID, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return correlationID
	}
	return ""
}

// EnsureHTTPCorrelationID ensures the request carries a valid UUID correlation ID,
// replacing missing or malformed values, and stores it in the request context.
func EnsureHTTPCorrelationID(r *http.Request) (*http.Request, string) {
	correlationID := r.Header.Get(CorrelationIDHeader)
	if _, err := uuid.Parse(correlationID); err != nil || correlationID == "" {
		correlationID = uuid.New().String()
		r.Header.Set(CorrelationIDHeader, correlationID)
	}

	ctx := WithCorrelationIDContext(r.Context(), correlationID)
	return r.WithContext(ctx), correlationID
}

// GetLoggerFromContext returns a logger with correlation ID from context automatically injected
func GetLoggerFromContext(ctx context.Context, baseLogger Logger) Logger {
	if correlationID := GetCorrelationIDFromContext(ctx); correlationID != "" {
		return baseLogger.WithCorrelationID(correlationID)
	}
	return baseLogger
}
