// Command enrgy runs a small demo server on the enrgy dispatch core.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Txuritan/enrgy/app"
	"github.com/Txuritan/enrgy/config"
	"github.com/Txuritan/enrgy/core"
	"github.com/Txuritan/enrgy/core/http"
	"github.com/Txuritan/enrgy/core/middleware"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "enrgy",
		Short:         "Minimal thread-pool HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Env)
			if err != nil {
				return err
			}
			defer logger.Sync()

			srv := core.New(
				buildApp(logger).Build(),
				core.WithConfig(cfg),
				core.WithLogger(logger),
			).Bind(cfg.Addr)

			go awaitSignal(logger, srv)

			return srv.Run()
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "path to a config file")

	return cmd
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// buildApp registers the demo routes and middleware.
func buildApp(logger *zap.Logger) *app.App {
	return app.New().
		Use(middleware.RequestID()).
		Use(middleware.Logger(logger)).
		Data(map[string]string{"server": "enrgy"}).
		GET("/", http.ServiceFunc(func(r *http.Request) (*http.Response, error) {
			return http.Text(http.StatusOK, "Welcome to enrgy!"), nil
		})).
		GET("/api/status", http.ServiceFunc(func(r *http.Request) (*http.Response, error) {
			return http.JSON(http.StatusOK, map[string]string{"status": "ok"}), nil
		})).
		GET("/api/users/:id", http.ServiceFunc(func(r *http.Request) (*http.Response, error) {
			return http.JSON(http.StatusOK, map[string]string{"user_id": r.Param("id")}), nil
		}))
}

// awaitSignal blocks until an interrupt arrives, then shuts the server down.
func awaitSignal(logger *zap.Logger, srv *core.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("signal received, shutting down", zap.Stringer("signal", sig))

	if err := srv.Shutdown(); err != nil {
		logger.Warn("shutdown failed", zap.Error(err))
	}
}
