package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus behind a key/value API so call sites read as
// log.Info("message", "key", value, ...).
type Logger struct {
	l *logrus.Logger
}

func NewLogger(level string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return &Logger{l: l}
}

func (g *Logger) Debug(msg string, kv ...interface{}) {
	g.l.WithFields(fields(kv)).Debug(msg)
}

func (g *Logger) Info(msg string, kv ...interface{}) {
	g.l.WithFields(fields(kv)).Info(msg)
}

func (g *Logger) Warn(msg string, kv ...interface{}) {
	g.l.WithFields(fields(kv)).Warn(msg)
}

func (g *Logger) Error(msg string, kv ...interface{}) {
	g.l.WithFields(fields(kv)).Error(msg)
}

// fields pairs up the variadic arguments; a trailing odd value is dropped.
func fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		f[key] = kv[i+1]
	}
	return f
}
