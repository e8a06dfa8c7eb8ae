package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-analytics/internal/config"
	"github.com/comitanigiacomo/kanso-analytics/internal/logger"
)

// @title                      Kanso Analytics API
// @version                    1.0
// @description                Habit tracking with streaks, statistics, heatmaps and trends.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization

var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "kanso-analytics",
	Short: "Habit analytics and streak engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the environment may already be set.
		_ = godotenv.Load()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().String("port", "8080", "HTTP port")
	rootCmd.PersistentFlags().String("db-driver", repository.DriverPostgres, "storage backend: postgres, sqlite or memory")
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")

	mustBind(v, "PORT", rootCmd.PersistentFlags().Lookup("port"))
	mustBind(v, "DB_DRIVER", rootCmd.PersistentFlags().Lookup("db-driver"))
	mustBind(v, "LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)

	logger.Info("starting", "db_driver", cfg.DB.Driver, "redis", cfg.RedisEnabled)

	a, err := newApp(ctx, cfg, metrics.New(metrics.DefaultConfig()))
	if err != nil {
		return err
	}
	defer a.close()

	a.worker.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("kanso analytics listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
	case <-ctx.Done():
		logger.Info("stop signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}

func migrate(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DB.Driver == repository.DriverMemory {
		logger.Info("memory driver has no schema, nothing to migrate")
		return nil
	}

	db, err := repository.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("schema up to date", "driver", cfg.DB.Driver)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
