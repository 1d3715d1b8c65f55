package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"svcman/internal/app"
	"svcman/internal/pkg/logger"
	"svcman/internal/router"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the service manager over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address, overrides server.port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := rt.cfg
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Port = addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router.New(cfg, app.New(rt.svc, version)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 优雅关闭处理
	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown error", "error", err)
		}
	}()

	if !cfg.Security.EnableAuth {
		logger.Warn(ctx, "Authentication disabled, serving read-only routes")
	}
	logger.Info(ctx, "Server started successfully", "port", cfg.Server.Port, "auth", cfg.Security.EnableAuth)
	fmt.Fprintf(cmd.OutOrStdout(), "svcman listening on %s...\n", cfg.Server.Port)
	fmt.Fprintf(cmd.OutOrStdout(), "Health check available at: %s/health\n", baseURL(cfg.Server.Port))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(ctx, "Server failed to start", "error", err)
		return err
	}

	logger.Info(ctx, "Server stopped gracefully")
	return nil
}

// baseURL turns a listen address such as ":8080" into a URL a user can open.
func baseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
