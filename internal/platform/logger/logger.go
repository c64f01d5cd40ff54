package logger

import (
	"context"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/ogurasousui/store-staffing/internal/platform/config"
)

// Logger は構造化ログの出力インターフェースです。
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// New は log 設定から charmbracelet/log のロガーを生成します。out が nil の場合は標準エラー出力です。
func New(cfg config.LogConfig, out io.Writer) *charmlog.Logger {
	if out == nil {
		out = os.Stderr
	}

	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Level:           ParseLevel(cfg.Level),
	})
	if cfg.Format == "json" {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return l
}

// ParseLevel は設定値をログレベルに変換します。未知の値は info 扱いです。
func ParseLevel(raw string) charmlog.Level {
	switch raw {
	case "debug":
		return charmlog.DebugLevel
	case "warn":
		return charmlog.WarnLevel
	case "error":
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// WithContext はロガーをコンテキストに格納します。
func WithContext(ctx context.Context, l *charmlog.Logger) context.Context {
	return charmlog.WithContext(ctx, l)
}

// FromContext はコンテキストのロガーを返します。未設定の場合は既定のロガーです。
func FromContext(ctx context.Context) *charmlog.Logger {
	return charmlog.FromContext(ctx)
}
