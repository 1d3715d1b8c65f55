// Package cmd wires configuration, logging, telemetry and the service layer
// into the svcman command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"svcman/internal/menu"
	"svcman/internal/pkg/config"
	"svcman/internal/pkg/console"
	"svcman/internal/pkg/executor"
	"svcman/internal/pkg/logger"
	"svcman/internal/pkg/logs"
	"svcman/internal/pkg/telemetry"
	"svcman/internal/service"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
)

// runtime holds what every subcommand needs once flags are parsed.
type runtime struct {
	cfg      *config.Config
	reporter *telemetry.Reporter
	svc      service.Service
	logs     *logs.Reader
	logFile  io.Closer
}

var rt runtime

var rootCmd = &cobra.Command{
	Use:           "svcman",
	Short:         "List, search, inspect and manage systemd services",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// execute runs the root command and tears down on every exit path,
// including a RunE error, where cobra skips the post-run hooks.
func execute(ctx context.Context) (err error) {
	defer func() {
		if terr := teardown(ctx); err == nil {
			err = terr
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// setup 加载配置并初始化日志、遥测与服务层
func setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Logging.Level = "debug"
	}

	closer, err := logger.Setup(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputFile: cfg.Logging.OutputFile,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reporter, err := telemetry.NewReporter(ctx, cfg.Telemetry, version)
	if err != nil {
		closer.Close()
		return err
	}

	runner := executor.New(cfg.Exec, reporter.Tracer())
	reader := logs.NewReader(runner, cfg.Logs)
	rt = runtime{
		cfg:      cfg,
		reporter: reporter,
		svc:      service.NewService(runner, reader, reporter),
		logs:     reader,
		logFile:  closer,
	}
	logger.Debug(ctx, "Configuration loaded", "config", path, "use_sudo", cfg.Exec.UseSudo, "list_style", cfg.UI.ListStyle)
	return nil
}

// teardown 刷新遥测并关闭日志文件; 可重复调用
func teardown(ctx context.Context) error {
	if rt.reporter != nil {
		if err := rt.reporter.Close(ctx); err != nil {
			logger.Warn(ctx, "Failed to flush telemetry", "error", err)
		}
		rt.reporter = nil
	}
	if rt.logFile != nil {
		err := rt.logFile.Close()
		rt.logFile = nil
		return err
	}
	return nil
}

// runInteractive 运行交互菜单直到用户退出
func runInteractive(cmd *cobra.Command, args []string) error {
	con := console.New(os.Stdin, cmd.OutOrStdout(), console.WithPageHeight(rt.cfg.UI.PageHeight))
	if !con.Interactive() {
		logger.Debug(cmd.Context(), "Not attached to a terminal, reading choices line by line")
	}
	m := menu.New(con, rt.svc, menu.ListStyle(rt.cfg.UI.ListStyle), menu.WithLogReader(rt.logs))

	if err := m.Run(cmd.Context()); err != nil {
		if errors.Is(err, console.ErrInputClosed) {
			con.Println()
		}
		return err
	}
	con.Println(con.Styles.Title.Render("Thanks for your time! Goodbye!"))
	return nil
}
