// Package http assembles the echo server for the intake service.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/intake/internal/logger"
	"github.com/xiaot623/gogo/intake/internal/metrics"
	"github.com/xiaot623/gogo/intake/internal/service"
	v1 "github.com/xiaot623/gogo/intake/internal/transport/http/v1"
	"github.com/xiaot623/gogo/intake/internal/transport/ws"
)

// NewServer creates and configures the HTTP server.
func NewServer(svc *service.Service, feed *ws.Server, m *metrics.Metrics, log logrus.FieldLogger, allowOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(logger.Middleware(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowOrigins,
	}))

	// Handlers
	v1Handler := v1.NewHandler(svc)
	v1Handler.RegisterRoutes(e)

	e.GET("/v1/interview-sessions/:patient_id/events", feed.HandleEvents)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	return e
}
