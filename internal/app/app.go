package app

import (
	"context"
	"time"

	"github.com/go-redis/redis"
	"gorm.io/gorm"

	"github.com/xpanvictor/liveslides/internal/config"
	"github.com/xpanvictor/liveslides/internal/domains/export"
	"github.com/xpanvictor/liveslides/internal/domains/preferences"
	"github.com/xpanvictor/liveslides/internal/domains/session"
	"github.com/xpanvictor/liveslides/internal/domains/slides"
	"github.com/xpanvictor/liveslides/internal/handlers/websocket"
	deckRepo "github.com/xpanvictor/liveslides/internal/repository/deck"
	prefsRepo "github.com/xpanvictor/liveslides/internal/repository/preferences"
	"github.com/xpanvictor/liveslides/internal/server"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	audioring "github.com/xpanvictor/liveslides/pkg/io/audioRing"
	"github.com/xpanvictor/liveslides/pkg/metrics"
	"github.com/xpanvictor/liveslides/pkg/realtime"
)

// audioRingSize holds roughly 20s of 24kHz mono PCM16.
const audioRingSize = 1 << 20

// App represents the application with all its dependencies
type App struct {
	Config  *config.Settings
	Logger  *Logger.Logger
	DB      *gorm.DB
	RC      *redis.Client
	Metrics *metrics.Metrics

	Preferences preferences.Service
	Exports     export.Service
	Microphone  *session.BrowserMicrophone
	Connections *websocket.ConnectionManager
	Controller  *session.Controller
	ServerDeps  server.Dependencies
}

// NewApp creates a new application instance with all dependencies properly wired.
// db and rc are optional: without them preferences live in a JSON file and the
// deck archive is kept in memory.
func NewApp(cfg *config.Settings, logger *Logger.Logger, db *gorm.DB, rc *redis.Client) (*App, error) {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		DB:      db,
		RC:      rc,
		Metrics: metrics.New(),
	}

	if err := app.setupDependencies(); err != nil {
		return nil, err
	}

	return app, nil
}

func (a *App) setupDependencies() error {
	// 1. preferences
	a.Preferences = NewPreferences(a.Config, a.RC, a.Logger)
	initial, err := a.Preferences.Get(context.Background())
	if err != nil {
		a.Logger.Warnf("using default preferences: %v", err)
	}

	// 2. sockets and the session controller
	a.Microphone = session.NewBrowserMicrophone(audioring.New(audioRingSize), a.Logger.Named("microphone"))
	a.Connections = websocket.NewConnectionManager(a.Logger.Named("ws"), a.Metrics)

	a.Controller = session.NewController(session.Dependencies{
		Dialer:      realtime.NewWebSocketDialer(),
		Microphone:  a.Microphone,
		Preferences: a.Preferences,
		Viewer:      a.Connections,
		Notifier:    a.Connections,
		Metrics:     a.Metrics,
		Logger:      a.Logger.Named("session"),
	}, session.Options{
		RealtimeURL:        a.Config.OpenAI.RealtimeURL,
		TranscriptionModel: a.Config.OpenAI.TranscriptionModel,
		Tuning:             TuningFrom(a.Config),
	}, initial)
	a.Preferences.Subscribe(a.Controller.PreferencesChanged)

	// 3. deck archive
	var decks export.Repository
	if a.DB != nil {
		decks = deckRepo.NewGormDeckRepo(a.DB)
	} else {
		decks = deckRepo.NewMemoryDeckRepo()
		a.Logger.Info("no database configured, deck archive kept in memory")
	}
	a.Exports = export.NewService(a.Config.Export.Dir, decks, a.Logger.Named("export"))

	a.ServerDeps = server.Dependencies{
		Controller:  a.Controller,
		Preferences: a.Preferences,
		Exports:     a.Exports,
		Exchanger:   realtime.NewSDPExchanger(),
		Sockets:     websocket.NewWebSocketHandler(a.Logger.Named("ws"), a.Connections, a.Microphone),
		Metrics:     a.Metrics,
		Logger:      a.Logger,
		StartedAt:   time.Now(),
	}
	return nil
}

// Reload applies a changed config file to the running app. Only the synthesis
// cadence is hot; everything else needs a restart.
func (a *App) Reload(cfg *config.Settings) {
	a.Controller.SetTuning(TuningFrom(cfg))
	a.Logger.Infof("synthesis retuned: interval=%s min_chars=%d min_gap=%s",
		cfg.Synthesis.Interval, cfg.Synthesis.MinChars, cfg.Synthesis.MinGap)
}

// Shutdown stops any running session and releases the stores.
func (a *App) Shutdown(ctx context.Context) {
	if err := a.Controller.Stop(ctx); err != nil {
		a.Logger.Warnf("stop session: %v", err)
	}
	a.Connections.Close()
	if a.RC != nil {
		a.RC.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

// GetServerDependencies returns the server dependencies
func (a *App) GetServerDependencies() server.Dependencies {
	return a.ServerDeps
}

// NewPreferences stores preferences in redis when rc is set, else in the JSON file.
func NewPreferences(cfg *config.Settings, rc *redis.Client, logger *Logger.Logger) preferences.Service {
	var repo preferences.Repository
	if rc != nil {
		repo = prefsRepo.NewRedisRepo(rc, cfg.Redis.Key)
		logger.Info("preferences stored in redis")
	} else {
		repo = prefsRepo.NewFileRepo(cfg.Preferences.File)
		logger.Infof("preferences stored in %s", cfg.Preferences.File)
	}
	return preferences.NewService(repo, preferences.Defaults(cfg.OpenAI.Model), logger.Named("preferences"))
}

func TuningFrom(cfg *config.Settings) slides.Tuning {
	return slides.Tuning{
		Interval: cfg.Synthesis.Interval,
		MinChars: cfg.Synthesis.MinChars,
		MinGap:   cfg.Synthesis.MinGap,
	}
}
