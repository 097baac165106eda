package handler

import (
	"github.com/sharkz-dev/UltraEconomy/internal/adapter/http/middleware"
	redisStore "github.com/sharkz-dev/UltraEconomy/internal/adapter/storage/redis"
	"github.com/sharkz-dev/UltraEconomy/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	EconomySvc     ports.EconomyService
	Reader         AccountReader
	Registry       ports.CurrencyRegistry
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies the storage backend)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	accountHandler := NewAccountHandler(deps.EconomySvc, deps.Reader, deps.Registry)

	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.GET("", rl("accounts"), accountHandler.ListAccounts)
			accounts.GET("/:key", rl("accounts"), accountHandler.GetAccount)
			accounts.GET("/:key/ledger", rl("ledger"), accountHandler.GetLedger)
		}

		v1.GET("/top/:currency", rl("leaderboard"), accountHandler.TopBalances)
	}

	return r
}
