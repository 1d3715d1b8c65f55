package app

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"svcman/internal/pkg/logger"
	"svcman/internal/pkg/logs"
	"svcman/internal/pkg/systemd"
	"svcman/internal/pkg/validator"
	"svcman/internal/service"

	"github.com/go-chi/chi/v5"
)

type App struct {
	Service service.Service
	Version string

	// checkSystemd is replaced in tests that have no system bus.
	checkSystemd func() error
}

func New(svc service.Service, version string) *App {
	return &App{
		Service:      svc,
		Version:      version,
		checkSystemd: systemd.CheckSystemdAvailable,
	}
}

// getUnitName 获取单元名称并校验
func getUnitName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "unit")
	if name == "" {
		name = r.URL.Query().Get("unit")
	}
	return name, validator.ValidateUnitName(name)
}

// ListServices 列出服务, 支持 q 关键字过滤和 sort=running
func (s *App) ListServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	keyword := r.URL.Query().Get("q")

	var units []systemd.Unit
	if keyword != "" {
		matches, err := s.Service.Search(ctx, keyword)
		if err != nil {
			logger.Error(ctx, "ListServices search failed", "error", err, "keyword", keyword)
			fail(w, http.StatusBadRequest, "validation failed", err)
			return
		}
		units = matches
		if r.URL.Query().Get("sort") == "running" {
			systemd.SortUnits(units)
		}
	} else {
		units = s.Service.List(ctx, r.URL.Query().Get("sort") == "running")
	}

	if units == nil {
		units = []systemd.Unit{}
	}
	ok(w, map[string]any{
		"total":    len(units),
		"services": units,
	})
}

// GetStatus 获取服务状态接口
func (s *App) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unit, err := getUnitName(r)
	if err != nil {
		logger.Error(ctx, "GetStatus validation failed", "error", err, "unit", unit)
		fail(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	detail, err := s.Service.Detail(ctx, unit)
	if err != nil {
		logger.Error(ctx, "GetStatus failed", "error", err, "unit", unit)
		fail(w, http.StatusInternalServerError, "failed to get status", err)
		return
	}
	ok(w, detail)
}

// GetLogs 获取服务日志接口
func (s *App) GetLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unit, err := getUnitName(r)
	if err != nil {
		logger.Error(ctx, "GetLogs validation failed", "error", err, "unit", unit)
		fail(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	mode, err := logs.ParseMode(r.URL.Query().Get("mode"))
	if err == nil && mode == logs.ModeFollow {
		err = logs.ErrStreamOnly
	}
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid mode", err)
		return
	}

	res, err := s.Service.Logs(ctx, unit, mode)
	if err != nil {
		logger.Error(ctx, "GetLogs failed", "error", err, "unit", unit)
		fail(w, http.StatusInternalServerError, "failed to get logs", err)
		return
	}

	ok(w, map[string]any{
		"unit":          res.Unit,
		"mode":          res.Mode,
		"from_fallback": res.FromFallback,
		"lines":         res.Lines(),
	})
}

// Act 执行 start/stop/restart/disable
func (s *App) Act(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unit, err := getUnitName(r)
	if err != nil {
		logger.Error(ctx, "Act validation failed", "error", err, "unit", unit)
		fail(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	name := chi.URLParam(r, "action")
	kind, found := service.ParseActionKind(name)
	if !found || !kind.Mutating() {
		fail(w, http.StatusNotFound, "unknown action", errors.New(name))
		return
	}

	var buf bytes.Buffer
	out, err := s.Service.Perform(ctx, service.Action{Kind: kind, Unit: unit}, &buf)
	if err != nil {
		apiResponse(w, http.StatusInternalServerError, -1, name+" failed", map[string]string{
			"error":  err.Error(),
			"output": buf.String(),
		})
		return
	}

	logger.Info(ctx, "Action completed", "action", name, "unit", unit)
	ok(w, map[string]string{
		"unit":    unit,
		"action":  name,
		"command": out.Command,
		"output":  buf.String(),
	})
}

// HealthCheck 健康检查接口
func (s *App) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.Version,
		"systemd":   "available",
	}

	if err := s.checkSystemd(); err != nil {
		health["status"] = "degraded"
		health["systemd"] = "unavailable"
		logger.Warn(ctx, "Systemd not available", "error", err)
	}

	logger.Debug(ctx, "Health check performed")
	ok(w, health)
}
