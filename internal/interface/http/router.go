package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jmorelli/chatdocs/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, docHandler *DocumentHandler, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
	)

	api := router.Group("/api/v1")
	{
		api.GET("/profiles", handler.ListProfiles)
		api.POST("/messages", handler.SendMessage)
		api.GET("/threads/:id/messages", handler.ListThreadMessages)
		api.POST("/documents", docHandler.Process)
		api.POST("/documents/batch", docHandler.ProcessBatch)
		api.POST("/transcriptions", handler.Transcribe)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
