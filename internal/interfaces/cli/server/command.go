package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"singmerge/internal/interfaces/cli/bootstrap"
	httpRouter "singmerge/internal/interfaces/http"
	"singmerge/internal/shared/goroutine"
	"singmerge/internal/shared/version"
)

const shutdownTimeout = 30 * time.Second

func NewCommand() *cobra.Command {
	flags := &bootstrap.Flags{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Start the HTTP server",
		Long:    `Start the singmerge HTTP API. The template at merge.template_path is loaded once at startup.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	flags.Bind(cmd)

	return cmd
}

func run(cmd *cobra.Command, flags *bootstrap.Flags) error {
	cfg, log, err := flags.Load()
	if err != nil {
		return err
	}

	log.Infow("starting server",
		"version", version.String(),
		"mode", cfg.Server.Mode,
		"template", cfg.Merge.TemplatePath,
	)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		log.Debugw("route registered", "method", httpMethod, "path", absolutePath)
	}

	container, err := httpRouter.NewContainer(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Warnw("failed to close container", "error", err)
		}
	}()

	router := httpRouter.NewRouter(container, log.Named("http"))
	router.SetupRoutes()

	srv := &http.Server{
		Addr:              cfg.Server.GetAddr(),
		Handler:           router.GetEngine(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infow("server listening", "address", srv.Addr)
	serveErr := goroutine.Go(log, "http-server", func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}
	<-serveErr

	log.Infow("server exited gracefully")
	return nil
}
