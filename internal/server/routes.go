package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xpanvictor/liveslides/internal/domains/export"
	"github.com/xpanvictor/liveslides/internal/domains/preferences"
	"github.com/xpanvictor/liveslides/internal/handlers"
	"github.com/xpanvictor/liveslides/internal/handlers/websocket"
	"github.com/xpanvictor/liveslides/pkg/Logger"
	"github.com/xpanvictor/liveslides/pkg/metrics"
)

type Dependencies struct {
	Controller  handlers.SessionController
	Preferences preferences.Service
	Exports     export.Service
	Exchanger   handlers.SDPExchanger
	Sockets     *websocket.WebSocketHandler
	Metrics     *metrics.Metrics
	Logger      *Logger.Logger
	StartedAt   time.Time
}

// InitializeRoutes mounts every HTTP and websocket endpoint on r.
func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	r.Use(handlers.CORSMiddleware())

	r.GET("/", handlers.ControlPage)
	r.GET("/health", handlers.Health(dep.Controller, dep.StartedAt))
	if dep.Metrics != nil {
		r.GET("/metrics", gin.WrapH(dep.Metrics.Handler()))
	}

	sessionHandler := handlers.NewSessionHandler(dep.Controller, dep.Logger)
	prefsHandler := handlers.NewPreferencesHandler(dep.Preferences, dep.Logger)
	exportHandler := handlers.NewExportHandler(dep.Controller, dep.Exports, dep.Metrics, dep.Logger)
	realtimeHandler := handlers.NewRealtimeHandler(dep.Exchanger, dep.Preferences, dep.Logger)

	r.GET("/presentation", exportHandler.Presentation)

	api := r.Group("/api")
	{
		api.GET("/preferences", prefsHandler.GetPreferences)
		api.PUT("/preferences", prefsHandler.UpdatePreferences)
		api.GET("/themes", prefsHandler.ListThemes)

		api.GET("/session", sessionHandler.GetSession)
		api.POST("/session/start", sessionHandler.StartSession)
		api.POST("/session/stop", sessionHandler.StopSession)
		api.POST("/session/analyze", sessionHandler.AnalyzeNow)

		api.GET("/slides", sessionHandler.ListSlides)
		api.POST("/slides/navigate", sessionHandler.Navigate)
		api.GET("/preview", sessionHandler.Preview)

		api.GET("/export/:format", exportHandler.Export)
		api.GET("/decks", exportHandler.ListDecks)

		api.POST("/realtime/sdp", realtimeHandler.ExchangeSDP)
	}

	if dep.Sockets != nil {
		dep.Sockets.RegisterRoutes(r)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Error: "Not found"})
	})
}
