// Package executor runs the external commands (systemctl, journalctl, tail,
// grep) the manager is built on, optionally elevated through sudo.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"svcman/internal/pkg/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Command 一条外部命令
type Command struct {
	Name       string
	Args       []string
	Privileged bool
}

// Cmd builds an unprivileged command.
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// Sudo builds a command that must run with elevated privileges.
func Sudo(name string, args ...string) Command {
	return Command{Name: name, Args: args, Privileged: true}
}

func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	s := strings.Join(parts, " ")
	if c.Privileged {
		return "sudo " + s
	}
	return s
}

// Runner 命令执行接口
type Runner interface {
	// Output runs the command and returns its captured stdout. Stdout is
	// returned even when the command exits non-zero.
	Output(ctx context.Context, cmd Command) (string, error)
	// Stream runs the command with stdout and stderr attached to w.
	Stream(ctx context.Context, w io.Writer, cmd Command) error
}

// Exec 基于 os/exec 的 Runner 实现
type Exec struct {
	useSudo  bool
	sudoPath string
	tracer   trace.Tracer
	stdin    io.Reader
	isRoot   func() bool
}

// New 创建命令执行器
func New(cfg config.ExecConfig, tracer trace.Tracer) *Exec {
	if tracer == nil {
		tracer = otel.Tracer("svcman")
	}
	sudoPath := cfg.SudoPath
	if sudoPath == "" {
		sudoPath = "sudo"
	}
	return &Exec{
		useSudo:  cfg.UseSudo,
		sudoPath: sudoPath,
		tracer:   tracer,
		stdin:    os.Stdin,
		isRoot:   func() bool { return os.Geteuid() == 0 },
	}
}

// Resolve returns the argv actually executed for cmd.
func (e *Exec) Resolve(cmd Command) (string, []string) {
	if cmd.Privileged && e.useSudo && !e.isRoot() {
		return e.sudoPath, append([]string{cmd.Name}, cmd.Args...)
	}
	return cmd.Name, cmd.Args
}

// Output 执行命令并捕获标准输出
func (e *Exec) Output(ctx context.Context, cmd Command) (string, error) {
	ctx, span := e.start(ctx, cmd)
	defer span.End()

	name, args := e.Resolve(cmd)
	c := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	e.finish(span, c, err)
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return stdout.String(), fmt.Errorf("%s: %w: %s", cmd, err, msg)
		}
		return stdout.String(), fmt.Errorf("%s: %w", cmd, err)
	}
	return stdout.String(), nil
}

// Stream 执行命令并把输出直接写到 w
func (e *Exec) Stream(ctx context.Context, w io.Writer, cmd Command) error {
	ctx, span := e.start(ctx, cmd)
	defer span.End()

	name, args := e.Resolve(cmd)
	c := exec.CommandContext(ctx, name, args...)
	c.Stdout = w
	c.Stderr = w
	c.Stdin = e.stdin

	err := c.Run()
	e.finish(span, c, err)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

func (e *Exec) start(ctx context.Context, cmd Command) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "exec."+cmd.Name, trace.WithAttributes(
		attribute.String("exec.command", cmd.Name),
		attribute.StringSlice("exec.args", cmd.Args),
		attribute.Bool("exec.privileged", cmd.Privileged),
	))
}

func (e *Exec) finish(span trace.Span, c *exec.Cmd, err error) {
	if c.ProcessState != nil {
		span.SetAttributes(attribute.Int("exec.exit_code", c.ProcessState.ExitCode()))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// ExitCode extracts the exit status from an error returned by a Runner,
// or -1 when the command did not run to completion.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Interrupted reports whether the command was ended by SIGINT, as happens to
// a foreground child when the user presses Ctrl+C.
func Interrupted(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == syscall.SIGINT
}
