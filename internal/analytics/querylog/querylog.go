// internal/analytics/querylog/querylog.go
package querylog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	StatusInfo  = "info"
	StatusError = "error"

	responsePreview = 200
)

// QueryLogger is the audit trail of answered queries: one JSON line per event
// in <dir>/queries_YYYYMMDD.log, mirrored to the console when one is given.
type QueryLogger struct {
	zl   *zap.Logger
	file *os.File
	path string
}

// New opens today's log file under dir. console may be nil.
func New(dir string, console zapcore.WriteSyncer) (*QueryLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("queries_%s.log", time.Now().Format("20060102")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open query log: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zapcore.InfoLevel),
	}
	if console != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), console, zapcore.InfoLevel))
	}

	return &QueryLogger{
		zl:   zap.New(zapcore.NewTee(cores...)).Named("queries"),
		file: f,
		path: path,
	}, nil
}

func (l *QueryLogger) Path() string {
	return l.path
}

// Log records the outcome of one query. Status "error" is logged at error
// level, anything else at info.
func (l *QueryLogger) Log(query, status, message string, fields ...zap.Field) {
	all := append([]zap.Field{zap.String("query", query), zap.String("status", status)}, fields...)
	if message != "" {
		all = append(all, zap.String("message", message))
	}

	if status == StatusError {
		l.zl.Error("query", all...)
		return
	}
	l.zl.Info("query", all...)
}

// LogAnswer records a query with a preview of the answer it received.
func (l *QueryLogger) LogAnswer(query, response string, metadata map[string]interface{}) {
	l.zl.Info("answer",
		zap.String("query", query),
		zap.String("response", Preview(response)),
		zap.Any("metadata", metadata),
	)
}

func (l *QueryLogger) Close() error {
	_ = l.zl.Sync()
	return l.file.Close()
}

// Preview truncates s to the first 200 runes, marking the cut with "...".
func Preview(s string) string {
	r := []rune(s)
	if len(r) <= responsePreview {
		return s
	}
	return string(r[:responsePreview]) + "..."
}
