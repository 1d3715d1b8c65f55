package service

import (
	"context"
	"fmt"
	"io"

	"svcman/internal/pkg/executor"
	"svcman/internal/pkg/logger"
	"svcman/internal/pkg/logs"
	"svcman/internal/pkg/systemd"
	"svcman/internal/pkg/telemetry"
	"svcman/internal/pkg/validator"
)

// Service 服务管理接口
type Service interface {
	// List 获取全部服务, sorted 时正在运行的排在前面
	List(ctx context.Context, sorted bool) []systemd.Unit
	// Search 按关键字查找服务
	Search(ctx context.Context, keyword string) ([]systemd.Unit, error)
	// Detail 获取单个服务的属性
	Detail(ctx context.Context, unit string) (*systemd.UnitDetail, error)
	// Logs 获取服务日志 (不含 follow)
	Logs(ctx context.Context, unit string, mode logs.Mode) (*logs.Result, error)
	// Perform 执行一个操作, 流式输出写入 w
	Perform(ctx context.Context, a Action, w io.Writer) (*Outcome, error)
}

type service struct {
	runner   executor.Runner
	logs     *logs.Reader
	reporter *telemetry.Reporter
}

// NewService 创建服务管理实例
func NewService(r executor.Runner, reader *logs.Reader, reporter *telemetry.Reporter) Service {
	return &service{
		runner:   r,
		logs:     reader,
		reporter: reporter,
	}
}

func (s *service) List(ctx context.Context, sorted bool) []systemd.Unit {
	units := systemd.List(ctx, s.runner)
	if sorted {
		systemd.SortUnits(units)
	}
	return units
}

func (s *service) Search(ctx context.Context, keyword string) ([]systemd.Unit, error) {
	if err := validator.ValidateKeyword(keyword); err != nil {
		return nil, err
	}
	matches := systemd.Filter(systemd.List(ctx, s.runner), keyword)
	logger.Debug(ctx, "Search completed", "keyword", keyword, "matches", len(matches))
	return matches, nil
}

// Detail 获取服务属性
func (s *service) Detail(ctx context.Context, unit string) (*systemd.UnitDetail, error) {
	if err := validator.ValidateUnitName(unit); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return systemd.Detail(ctx, s.runner, unit), nil
}

// Logs 获取服务日志
func (s *service) Logs(ctx context.Context, unit string, mode logs.Mode) (*logs.Result, error) {
	if err := validator.ValidateUnitName(unit); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.logs.Journal(ctx, unit, mode)
}

func (s *service) Perform(ctx context.Context, a Action, w io.Writer) (*Outcome, error) {
	if err := validator.ValidateUnitName(a.Unit); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	logger.Info(ctx, "Performing action", "action", a.Kind.String(), "unit", a.Unit)

	out, err := s.dispatch(ctx, a, w)
	if a.Kind.Mutating() {
		s.reporter.ReportAction(ctx, a.Unit, a.Kind.String(), err)
	}
	if err != nil {
		logger.Error(ctx, "Action failed", "action", a.Kind.String(), "unit", a.Unit, "error", err)
		return nil, fmt.Errorf("failed to %s %s: %w", a.Kind, a.Unit, err)
	}
	out.Action = a
	return out, nil
}

func (s *service) dispatch(ctx context.Context, a Action, w io.Writer) (*Outcome, error) {
	switch a.Kind {
	case ActionStart, ActionStop, ActionRestart, ActionDisable:
		cmd := executor.Sudo("systemctl", a.Kind.String(), a.Unit)
		return &Outcome{Command: cmd.String(), Streamed: true}, s.runner.Stream(ctx, w, cmd)

	case ActionLogsRecent:
		return s.journal(ctx, a.Unit, logs.ModeRecent)
	case ActionLogsBoot:
		return s.journal(ctx, a.Unit, logs.ModeBoot)
	case ActionLogsErrors:
		return s.journal(ctx, a.Unit, logs.ModeErrors)

	case ActionLogsFollow:
		cmd, _ := s.logs.JournalCommand(a.Unit, logs.ModeFollow)
		return &Outcome{Command: cmd.String(), Streamed: true}, s.logs.Follow(ctx, w, a.Unit)

	case ActionTailSyslog:
		return s.tail(ctx, s.logs.SyslogPath())
	case ActionTailMessages:
		return s.tail(ctx, s.logs.MessagesPath())

	case ActionStatus:
		cmd := systemd.StatusCommand(a.Unit)
		err := s.runner.Stream(ctx, w, cmd)
		// systemctl status exits 3 for inactive units
		if executor.ExitCode(err) > 0 {
			err = nil
		}
		return &Outcome{Command: cmd.String(), Streamed: true}, err

	default:
		return nil, fmt.Errorf("unknown action %s", a.Kind)
	}
}

func (s *service) journal(ctx context.Context, unit string, mode logs.Mode) (*Outcome, error) {
	cmd, err := s.logs.JournalCommand(unit, mode)
	if err != nil {
		return nil, err
	}
	res, err := s.logs.Journal(ctx, unit, mode)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Command: cmd.String(), Output: res.Output, FromFallback: res.FromFallback}
	if res.FromFallback {
		out.Command = s.logs.SyslogGrepCommand(unit).String()
	}
	return out, nil
}

func (s *service) tail(ctx context.Context, path string) (*Outcome, error) {
	text, err := s.logs.Tail(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Outcome{Command: s.logs.TailCommand(path).String(), Output: text}, nil
}
