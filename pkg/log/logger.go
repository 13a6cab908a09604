// Package log provides structured logging for the heartmine pipeline.
//
// The package wraps github.com/rs/zerolog behind a small Logger interface so
// that estimators can log with key/value pairs without depending on a concrete
// logging backend. Two entry points exist:
//
//   - Global logger: SetupLogger/GetLogger/LogError for application code
//     (cmd, examples) that wants a process-wide zerolog.Logger.
//   - Named loggers: GetLoggerWithName or a LoggerProvider for estimators,
//     which attach a component name and structured context to every event.
//
// Example usage:
//
//	log.SetupLogger("debug")
//	logger := log.GetLoggerWithName("pca").With(
//		log.ModelNameKey, "PCA",
//		log.ComponentKey, "decomposition",
//	)
//	logger.Info("Fit complete", log.FeaturesKey, 13, log.ComponentsKey, 4)
package log

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Standard structured logging keys shared across estimators.
const (
	ModelNameKey  = "model"
	ComponentKey  = "component"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "n_samples"
	FeaturesKey   = "n_features"
	ComponentsKey = "n_components"
	ClustersKey   = "n_clusters"
	IterationsKey = "n_iterations"
	RulesKey      = "n_rules"
	DurationMsKey = "duration_ms"
)

// Standard values for OperationKey and PhaseKey.
const (
	OperationFit       = "fit"
	OperationTransform = "transform"
	OperationPredict   = "predict"
	PhaseTraining      = "training"
	PhaseInference     = "inference"
)

// Logger is the minimal structured logging interface used by estimators.
// Keys and values are passed as alternating arguments, slog style.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	With(keysAndValues ...interface{}) Logger
}

// LoggerProvider creates named loggers for components.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
}

var (
	mu           sync.RWMutex
	globalLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger().Level(zerolog.InfoLevel)
)

// ToLogLevel converts a level string ("debug", "info", "warn", "error") into
// a zerolog level. Unknown strings fall back to info.
func ToLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// SetupLogger configures the global logger with the given level string.
func SetupLogger(level string) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = globalLogger.Level(ToLogLevel(level))
}

// GetLogger returns the global zerolog logger for application-level logging.
func GetLogger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// LogError logs err at error level with the given message.
func LogError(err error, msg string) {
	logger := GetLogger()
	logger.Error().Err(err).Msg(msg)
}

// GetLoggerWithName returns a named Logger backed by the global logger.
func GetLoggerWithName(name string) Logger {
	return &zerologLogger{logger: GetLogger().With().Str("logger", name).Logger()}
}

// zerologProvider is the default LoggerProvider backed by zerolog.
type zerologProvider struct {
	base zerolog.Logger
}

// NewZerologProvider creates a LoggerProvider writing to stderr at the given level.
func NewZerologProvider(level zerolog.Level) LoggerProvider {
	base := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().Level(level)
	return &zerologProvider{base: base}
}

func (p *zerologProvider) GetLogger() Logger {
	return &zerologLogger{logger: p.base}
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{logger: p.base.With().Str("logger", name).Logger()}
}

// zerologLogger adapts zerolog.Logger to the Logger interface.
type zerologLogger struct {
	logger zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(fieldMap(keysAndValues)).Msg(msg)
}

func (l *zerologLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(fieldMap(keysAndValues)).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(fieldMap(keysAndValues)).Msg(msg)
}

func (l *zerologLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(fieldMap(keysAndValues)).Msg(msg)
}

func (l *zerologLogger) With(keysAndValues ...interface{}) Logger {
	return &zerologLogger{logger: l.logger.With().Fields(fieldMap(keysAndValues)).Logger()}
}

// fieldMap converts alternating key/value arguments into a zerolog fields map.
// Trailing keys without a value and non-string keys are dropped.
func fieldMap(keysAndValues []interface{}) map[string]interface{} {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
