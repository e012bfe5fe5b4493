package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	logger     *logrus.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global logger to write to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000000Z07:00",
		})
		logger.SetLevel(logrus.InfoLevel)
	})
}

// SetLevel changes the minimum level of the global logger. Unknown levels
// fall back to INFO.
func SetLevel(l Level) {
	initLogger()
	logger.SetLevel(toLogrus(l))
}

// SetOutput redirects the global logger, mostly useful in tests.
func SetOutput(w io.Writer) {
	initLogger()
	logger.SetOutput(w)
}

// ParseLevel maps a case-sensitive config value to a Level.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return Level(s), true
	}
	return LevelInfo, false
}

func Debug(msg string, kv ...any) {
	initLogger()
	entry(logger, kv).Debug(msg)
}

func Info(msg string, kv ...any) {
	initLogger()
	entry(logger, kv).Info(msg)
}

func Warn(msg string, kv ...any) {
	initLogger()
	entry(logger, kv).Warn(msg)
}

func Error(msg string, err error, kv ...any) {
	initLogger()
	entry(logger, kv).WithError(err).Error(msg)
}

// Tracer is the side channel used by diagnostic mode. Implementations must
// not influence the caller beyond writing output.
type Tracer interface {
	Trace(msg string, kv ...any)
	Enabled() bool
}

type nopTracer struct{}

func (nopTracer) Trace(string, ...any) {}
func (nopTracer) Enabled() bool        { return false }

// NopTracer discards everything.
var NopTracer Tracer = nopTracer{}

type logrusTracer struct {
	l *logrus.Logger
}

// NewTracer returns a Tracer writing debug-level records to w. A nil w
// means stderr.
func NewTracer(w io.Writer) Tracer {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &logrusTracer{l: l}
}

func (t *logrusTracer) Trace(msg string, kv ...any) {
	entry(t.l, kv).Debug(msg)
}

func (t *logrusTracer) Enabled() bool { return true }

func entry(l *logrus.Logger, kv []any) *logrus.Entry {
	return l.WithFields(formatKVs(kv...))
}

func formatKVs(kv ...any) logrus.Fields {
	fields := logrus.Fields{}
	// Expect kv as pairs: key, value, key, value, ...
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields[key] = kv[i+1]
	}
	// If odd number of args, last one is ignored.
	return fields
}

func toLogrus(l Level) logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
