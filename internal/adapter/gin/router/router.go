package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/adapter/gin/middleware"
	"user-crud-service/pkg/metrics"
	"user-crud-service/pkg/ratelimit"
)

// Deps carries everything the router wires into routes and middleware.
type Deps struct {
	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
	RateLimiter   *ratelimit.Limiter  // nil or disabled lets every request through
	Prom          *metrics.Prom       // nil disables request metrics
	Gatherer      prometheus.Gatherer // nil disables GET /metrics
	MaxBodyBytes  int64
	// TrustedProxies may set X-Forwarded-For; nil trusts none and uses the peer address
	TrustedProxies []string
	Log            *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(d.TrustedProxies); err != nil {
		d.Log.Error("invalid trusted proxies, trusting none", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}

	// Global middleware
	router.Use(middleware.Recovery(d.Log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Log))
	if d.Prom != nil {
		router.Use(d.Prom.GinMiddleware())
	}
	router.Use(middleware.MaxBodyBytes(d.MaxBodyBytes))
	router.Use(middleware.RateLimiter(d.RateLimiter, d.Log))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.ErrorResponse{Error: "not_found", Message: "route not found"})
	})

	// Operational endpoints
	router.GET("/actuator/health", d.HealthHandler.Health)
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// User routes
	router.POST("/addUser", d.UserHandler.AddUser)
	router.POST("/addUsers", d.UserHandler.AddUsers)
	router.GET("/all", d.UserHandler.All)
	router.GET("/count", d.UserHandler.Count)
	router.GET("/user/:userId", d.UserHandler.GetUser)

	return router
}
