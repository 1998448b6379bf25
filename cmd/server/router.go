package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rtCamp/next-crm/internal/application/services"
	"github.com/rtCamp/next-crm/internal/interfaces/middleware"
	"github.com/rtCamp/next-crm/internal/interfaces/rest"
)

// newRouter mounts the public endpoints and the authenticated API
func newRouter(svcMgr *services.ServiceManager, tokens middleware.TokenValidator, metrics *middleware.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.Cors())
	router.Use(metrics.Middleware())

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := svcMgr.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(tokens))
	rest.NewHandlers(svcMgr).RegisterRoutes(api)

	return router
}
