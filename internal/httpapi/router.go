// Package httpapi exposes document chat sessions over HTTP.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/internal/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	SessionHandler *SessionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Log != nil {
		r.Use(RequestLogger(cfg.Log))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	if h := cfg.SessionHandler; h != nil {
		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/:id", h.GetSession)
		api.DELETE("/sessions/:id", h.EndSession)
		api.POST("/sessions/:id/documents", h.UploadDocuments)
		api.POST("/sessions/:id/questions", h.AskQuestion)
		api.GET("/sessions/:id/history", h.GetHistory)
		api.GET("/sessions/:id/transcript", h.GetTranscript)
	}
	return r
}
