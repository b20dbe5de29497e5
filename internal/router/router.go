package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"timesaver/backend/internal/handler"
	"timesaver/backend/internal/middleware"
	"timesaver/backend/internal/service"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Entries  *handler.EntryHandler
	Reports  *handler.ReportHandler
	Messages *handler.MessageHandler
	Widgets  *handler.WidgetHandler
}

func New(
	authService *service.AuthService,
	handlers Handlers,
	corsOrigins []string,
	logger *zap.Logger,
) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(authService))

	entries := protected.Group("/entries")
	entries.GET("", handlers.Entries.List)
	entries.POST("", handlers.Entries.Create)
	entries.GET("/:id", handlers.Entries.Get)
	entries.PUT("/:id", handlers.Entries.Update)
	entries.DELETE("/:id", handlers.Entries.Delete)

	protected.GET("/dashboard", handlers.Reports.Dashboard)
	protected.GET("/advice", handlers.Reports.Advice)
	protected.GET("/export/csv", handlers.Reports.ExportCSV)
	protected.GET("/export/pdf", handlers.Reports.ExportPDF)

	messages := protected.Group("/messages")
	messages.GET("", handlers.Messages.Inbox)
	messages.POST("", handlers.Messages.Send)
	messages.GET("/thread/:userId", handlers.Messages.Thread)
	protected.GET("/users", handlers.Messages.Users)

	protected.GET("/weather", handlers.Widgets.Weather)
	protected.GET("/news", handlers.Widgets.News)
	protected.GET("/widgets", handlers.Widgets.Widgets)

	return engine
}
