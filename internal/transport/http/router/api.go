package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-gin-user-api/internal/core/config"
	"go-gin-user-api/internal/transport/http/handler"
	mdw "go-gin-user-api/internal/transport/http/middleware"
)

func NewAPIEngine(cfg *config.Config, l *zap.Logger, users *handler.UserHandler) *gin.Engine {
	// 严格 JSON：未声明字段直接 400
	gin.EnableJsonDecoderDisallowUnknownFields()

	r := gin.New()
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.New(corsConfig(cfg.CORS)),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	g := api.Group("/users")
	g.POST("", users.Create)
	g.GET("", users.List)
	g.GET("/:id", users.Get)
	g.PATCH("/:id", users.Update)
	g.DELETE("/:id", users.Delete)

	return r
}

func corsConfig(c config.CORS) cors.Config {
	cc := cors.DefaultConfig()
	if len(c.AllowOrigins) > 0 {
		cc.AllowOrigins = c.AllowOrigins
	} else {
		cc.AllowAllOrigins = true
	}
	if len(c.AllowMethods) > 0 {
		cc.AllowMethods = c.AllowMethods
	}
	if len(c.AllowHeaders) > 0 {
		cc.AllowHeaders = c.AllowHeaders
	}
	return cc
}
