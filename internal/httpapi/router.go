package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/brainfish/brainfish-chat/internal/chat"
	"github.com/brainfish/brainfish-chat/internal/common"
	"github.com/brainfish/brainfish-chat/internal/config"
	"github.com/brainfish/brainfish-chat/internal/httpapi/handlers"
	"github.com/brainfish/brainfish-chat/internal/httpapi/middleware"
)

func NewRouter(cfg config.Config, svc *chat.Service) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Session-ID", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(cfg, svc)

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/chat", h.Chat)
	api.GET("/history/:session_id", h.History)
	api.POST("/upload", h.Upload)
	api.DELETE("/upload/clear", h.ClearUploads)

	return r
}
