// Package router assembles the gin engine and registers spec section 6's
// route table against a project.Project's handlers, grounded on the
// teacher's router package (Init/Run/Stop lifecycle, graceful shutdown).
package router

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/forbearing/flowquery/config"
	"github.com/forbearing/flowquery/logger"
	"github.com/forbearing/flowquery/middleware"
	"github.com/forbearing/flowquery/project"
	"github.com/gin-gonic/gin"
)

var (
	root   *gin.Engine
	server *http.Server
)

// New builds the gin engine for proj, registering the route table from
// spec section 6 under config.App.Server.VersionPrefix. Split from Run so
// tests can exercise the engine with httptest without binding a socket.
func New(proj *project.Project) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	root = gin.New()
	root.Use(gin.Recovery(), middleware.RequestID())

	base := root.Group(config.App.Server.VersionPrefix)
	base.Use(middleware.Authenticate(proj.Orchestrator.Auth), middleware.Configurables(), middleware.FeatureFlags())

	h := proj.Handlers
	base.GET("/data-catalog", h.DataCatalog)
	base.GET("/parameters", h.ProjectParameters)
	base.POST("/parameters", h.ProjectParameters)
	base.GET("/dataset/:name/parameters", h.DatasetParameters)
	base.POST("/dataset/:name/parameters", h.DatasetParameters)
	base.GET("/dataset/:name", h.Dataset)
	base.POST("/dataset/:name", h.Dataset)
	base.GET("/dashboard/:name/parameters", h.DashboardParameters)
	base.POST("/dashboard/:name/parameters", h.DashboardParameters)
	base.GET("/dashboard/:name", h.Dashboard)
	base.POST("/dashboard/:name", h.Dashboard)

	return root
}

// Run starts the HTTP server on config.App.Server.Listen/Port, blocking
// until it stops or fails.
func Run(proj *project.Project) error {
	engine := New(proj)
	addr := net.JoinHostPort(config.App.Server.Listen, strconv.Itoa(config.App.Server.Port))
	logger.Handler.Infow("server started", "addr", addr)

	server = &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  config.App.Server.ReadTimeout,
		WriteTimeout: config.App.Server.WriteTimeout,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Handler.Errorw("server failed", "err", err)
		return err
	}
	return nil
}

// Stop gracefully shuts the server down, per the teacher's Stop.
func Stop() {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Handler.Errorw("server shutdown failed", "err", err)
	}
	server = nil
}
