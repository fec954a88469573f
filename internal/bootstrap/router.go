package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/shopgraph/shopgraph-backend/internal/api/http"
	"github.com/shopgraph/shopgraph-backend/internal/api/http/middleware"
	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
	rechttp "github.com/shopgraph/shopgraph-backend/internal/recommendation/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Log         *logger.Logger

	Recommender rechttp.Recommender
	Runs        rechttp.RunReader
	Health      map[string]httpapi.Pinger

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))
	r.Use(middleware.RequestIDMiddleware(dep.Log))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Health)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/")
	api.Use(middleware.RateLimitMiddleware(dep.RateLimitRPS, dep.RateLimitBurst))

	rechttp.New(dep.Recommender, dep.Runs, dep.Log).Register(api)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
