package logs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"svcman/internal/pkg/config"
	"svcman/internal/pkg/executor"
	"svcman/internal/pkg/logger"
)

// Mode journalctl 查询方式
type Mode string

const (
	ModeRecent Mode = "recent" // 最近 N 条
	ModeBoot   Mode = "boot"   // 本次启动以来
	ModeErrors Mode = "errors" // err 及以上级别
	ModeFollow Mode = "follow" // 实时跟踪
)

var (
	ErrUnknownMode = errors.New("unknown log mode")
	// ErrStreamOnly is returned when follow mode is asked for captured output.
	ErrStreamOnly = errors.New("log mode can only be streamed")
)

// ParseMode 解析查询方式, 空字符串视为 recent
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case "":
		return ModeRecent, nil
	case ModeRecent, ModeBoot, ModeErrors, ModeFollow:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Result 一次日志查询的结果
type Result struct {
	Unit         string `json:"unit"`
	Mode         Mode   `json:"mode"`
	Output       string `json:"output"`
	FromFallback bool   `json:"from_fallback"`
}

// Empty reports whether the query produced nothing but whitespace.
func (r *Result) Empty() bool {
	return strings.TrimSpace(r.Output) == ""
}

// Lines 按行拆分输出
func (r *Result) Lines() []string {
	out := strings.TrimRight(r.Output, "\n")
	if strings.TrimSpace(out) == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Reader 日志读取器
type Reader struct {
	runner       executor.Runner
	syslogPath   string
	messagesPath string
	lines        int
}

// NewReader 创建日志读取器
func NewReader(r executor.Runner, cfg config.LogsConfig) *Reader {
	lines := cfg.Lines
	if lines <= 0 {
		lines = 100
	}
	return &Reader{
		runner:       r,
		syslogPath:   cfg.SyslogPath,
		messagesPath: cfg.MessagesPath,
		lines:        lines,
	}
}

// SyslogPath returns the configured /var/log/syslog location.
func (rd *Reader) SyslogPath() string { return rd.syslogPath }

// MessagesPath returns the configured /var/log/messages location.
func (rd *Reader) MessagesPath() string { return rd.messagesPath }

// Lines returns how many lines the recent and tail modes read.
func (rd *Reader) Lines() int { return rd.lines }

// JournalCommand 构造 journalctl 命令
func (rd *Reader) JournalCommand(unit string, mode Mode) (executor.Command, error) {
	switch mode {
	case ModeRecent:
		return executor.Cmd("journalctl", "-u", unit, "--no-pager", "-n", strconv.Itoa(rd.lines)), nil
	case ModeBoot:
		return executor.Cmd("journalctl", "-u", unit, "--no-pager", "-b"), nil
	case ModeErrors:
		return executor.Cmd("journalctl", "-u", unit, "--no-pager", "-p", "err"), nil
	case ModeFollow:
		return executor.Cmd("journalctl", "-u", unit, "-f"), nil
	default:
		return executor.Command{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// SyslogGrepCommand is the fallback used when the journal has nothing for unit.
func (rd *Reader) SyslogGrepCommand(unit string) executor.Command {
	return executor.Sudo("grep", "--", unit, rd.syslogPath)
}

// TailCommand 读取原始日志文件末尾
func (rd *Reader) TailCommand(path string) executor.Command {
	return executor.Sudo("tail", "-n", strconv.Itoa(rd.lines), path)
}

// Journal 获取服务日志; journalctl 无输出时退回到 syslog grep, 且只退回一次
func (rd *Reader) Journal(ctx context.Context, unit string, mode Mode) (*Result, error) {
	if mode == ModeFollow {
		return nil, fmt.Errorf("%w: %s", ErrStreamOnly, mode)
	}
	cmd, err := rd.JournalCommand(unit, mode)
	if err != nil {
		return nil, err
	}

	out, err := rd.runner.Output(ctx, cmd)
	if err != nil {
		logger.Warn(ctx, "journalctl failed", "unit", unit, "mode", mode, "error", err)
	}

	res := &Result{Unit: unit, Mode: mode, Output: out}
	if !res.Empty() {
		return res, nil
	}

	logger.Info(ctx, "No journal output, falling back to syslog grep", "unit", unit, "mode", mode)
	out, err = rd.runner.Output(ctx, rd.SyslogGrepCommand(unit))
	if err != nil {
		// grep exits 1 on no match
		logger.Debug(ctx, "syslog grep returned no data", "unit", unit, "error", err)
	}
	res.Output = out
	res.FromFallback = true
	return res, nil
}

// Follow 实时跟踪日志直到 ctx 被取消
func (rd *Reader) Follow(ctx context.Context, w io.Writer, unit string) error {
	cmd, _ := rd.JournalCommand(unit, ModeFollow)
	err := rd.runner.Stream(ctx, w, cmd)
	if err != nil && (ctx.Err() != nil || executor.Interrupted(err)) {
		// interrupted by the user
		return nil
	}
	return err
}

// Tail 读取日志文件最后 N 行
func (rd *Reader) Tail(ctx context.Context, path string) (string, error) {
	out, err := rd.runner.Output(ctx, rd.TailCommand(path))
	if err != nil {
		return out, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}
