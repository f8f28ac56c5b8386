// Package server exposes the session over HTTP for chat bots and dashboards.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/zvonler/adminreport/metrics"
	"github.com/zvonler/adminreport/session"
)

type Server struct {
	app     *fiber.App
	session *session.Session
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
}

func New(sess *session.Session, m *metrics.Metrics, logger *zap.SugaredLogger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	s := &Server{
		app:     app,
		session: sess,
		metrics: m,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Infow("http service listening", "address", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())

	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/healthz" || path == "/metrics" {
			return c.Next()
		}
		s.logger.Debugw("http request", "method", c.Method(), "path", path, "ip", c.IP())
		return c.Next()
	})
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}

	v1 := s.app.Group("/api/v1")
	v1.Get("/period", s.getPeriod)
	v1.Post("/roster/sync", s.syncRoster)
	v1.Post("/inactives/load", s.loadInactives)
	v1.Get("/reports/forum/state", s.getForumState)
	v1.Post("/reports/forum/refresh", s.refreshForum)
	v1.Get("/reports/forum", s.getForumReport)
	v1.Get("/reports/admin", s.getAdminReport)
	v1.Post("/config/reload", s.reloadConfig)
}
