package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

var defaultLogger *slog.Logger

func init() {
	// 交互模式下默认只输出警告及以上级别，避免干扰菜单
	defaultLogger = slog.New(newHandler(os.Stderr, charmlog.WarnLevel, "text"))
	slog.SetDefault(defaultLogger)
}

// Options 日志初始化参数
type Options struct {
	Level      string
	Format     string
	OutputFile string
}

// Setup 按配置重建默认日志记录器, 返回的 closer 用于关闭日志文件
func Setup(opts Options) (io.Closer, error) {
	if opts.Level == "" {
		opts.Level = "info"
	}
	level, err := charmlog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.OutputFile != "" {
		f, err := os.OpenFile(opts.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", opts.OutputFile, err)
		}
		w, closer = f, f
	}

	defaultLogger = slog.New(newHandler(w, level, opts.Format))
	slog.SetDefault(defaultLogger)
	return closer, nil
}

// SetOutput 将日志重定向到指定 writer (测试用)
func SetOutput(w io.Writer, level string) {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	defaultLogger = slog.New(newHandler(w, lvl, "logfmt"))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newHandler(w io.Writer, level charmlog.Level, format string) *charmlog.Logger {
	var formatter charmlog.Formatter
	switch format {
	case "json":
		formatter = charmlog.JSONFormatter
	case "logfmt":
		formatter = charmlog.LogfmtFormatter
	default:
		formatter = charmlog.TextFormatter
	}
	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       formatter,
		Prefix:          "svcman",
	})
}

// Info 记录信息级别日志
func Info(ctx context.Context, msg string, args ...any) {
	defaultLogger.InfoContext(ctx, msg, args...)
}

// Error 记录错误级别日志
func Error(ctx context.Context, msg string, args ...any) {
	defaultLogger.ErrorContext(ctx, msg, args...)
}

// Warn 记录警告级别日志
func Warn(ctx context.Context, msg string, args ...any) {
	defaultLogger.WarnContext(ctx, msg, args...)
}

// Debug 记录调试级别日志
func Debug(ctx context.Context, msg string, args ...any) {
	defaultLogger.DebugContext(ctx, msg, args...)
}
