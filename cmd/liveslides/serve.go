package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/xpanvictor/liveslides/internal/app"
	"github.com/xpanvictor/liveslides/internal/config"
	"github.com/xpanvictor/liveslides/internal/database"
	"github.com/xpanvictor/liveslides/internal/handlers"
	"github.com/xpanvictor/liveslides/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the control page, presentation window and session API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	if err := viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadSettings()
	if err != nil {
		return err
	}
	defer logger.Sync()

	var rc *redis.Client
	if cfg.Redis.Addr != "" {
		if rc, err = database.NewRedis(cfg.Redis); err != nil {
			return err
		}
	}

	var db *gorm.DB
	if cfg.DB.Enabled() {
		if db, err = database.InitDB(cfg.DB, cfg.Debug); err != nil {
			return err
		}
		if err := database.MigrateDB(db); err != nil {
			return err
		}
	}

	a, err := app.NewApp(cfg, logger, db, rc)
	if err != nil {
		return err
	}

	config.Watch(viper.GetViper(), a.Reload, func(err error) {
		logger.Warnf("config reload ignored: %v", err)
	})

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLoggerMiddleware(logger), handlers.ErrorHandlerMiddleware(logger))
	server.InitializeRoutes(router, a.GetServerDependencies())

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router.Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		a.Shutdown(context.Background())
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	a.Shutdown(ctx)
	logger.Info("shutdown complete")
	return nil
}
