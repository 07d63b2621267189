package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/polkiloo/orders/internal/metrics"
	"github.com/polkiloo/orders/internal/server/http/handlers"
	"github.com/polkiloo/orders/internal/server/http/middleware"
)

const maxRequestBody = 1 << 20

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.OrdersFacade, logger *slog.Logger, httpMetrics *metrics.HTTPMetrics, gatherer prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Metrics(httpMetrics))
	engine.Use(middleware.DecompressRequest(maxRequestBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	order := engine.Group("/order")
	order.GET("", orderHandler.List)
	order.GET("/:id", orderHandler.Get)
	order.POST("", middleware.OptionalAuth(facade), orderHandler.Create)
	order.PATCH("/:id/change-status", orderHandler.ChangeStatus)
	order.DELETE("/:id", orderHandler.Delete)

	engine.GET("/health", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))

	return engine
}
