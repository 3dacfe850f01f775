// Package site serves the rendered documentation over HTTP.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/p-blackswan/protodocs/internal/docs"
	perrors "github.com/p-blackswan/protodocs/internal/errors"
	"github.com/p-blackswan/protodocs/internal/health"
	"github.com/p-blackswan/protodocs/internal/metrics"
	"github.com/p-blackswan/protodocs/internal/requestid"
)

// Server is the documentation Fiber application.
type Server struct {
	app    *fiber.App
	docs   *docs.Service
	logger zerolog.Logger
}

// NewServer creates and configures the server. checker and m may be nil.
func NewServer(svc *docs.Service, checker *health.Checker, m *metrics.Metrics, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "site").Logger()

	s := &Server{docs: svc, logger: logger}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
		ReadBufferSize:        8192,
		WriteBufferSize:       8192,
	})

	s.setupMiddleware()
	s.setupRoutes(checker, m)
	return s
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	s.app.Use(requestid.Middleware())

	s.app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		// Skip noisy probe logging
		if path == "/healthz" || path == "/readyz" || path == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		s.logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Str("request_id", requestid.Get(c)).
			Msg("request")
		return err
	})
}

func (s *Server) setupRoutes(checker *health.Checker, m *metrics.Metrics) {
	s.app.Get("/healthz", health.Liveness)
	if checker != nil {
		s.app.Get("/readyz", checker.Readiness)
	} else {
		s.app.Get("/readyz", health.Liveness)
	}
	if m != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	root := s.docs.Renderer().Links().RootIndex()
	s.app.Get(root, s.versionList)
	s.app.Get(root+"/:version", s.versionIndex)
	s.app.Get(root+"/:version/:domain", s.domainPage)
}

func (s *Server) versionList(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.docs.WriteVersions(c.UserContext(), &buf); err != nil {
		return err
	}
	return sendHTML(c, fiber.StatusOK, &buf)
}

func (s *Server) versionIndex(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.docs.WriteVersion(c.UserContext(), &buf, c.Params("version")); err != nil {
		return err
	}
	return sendHTML(c, fiber.StatusOK, &buf)
}

func (s *Server) domainPage(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.docs.WriteDomain(c.UserContext(), &buf, c.Params("version"), c.Params("domain")); err != nil {
		return err
	}
	return sendHTML(c, fiber.StatusOK, &buf)
}

func sendHTML(c *fiber.Ctx, status int, buf *bytes.Buffer) error {
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// handleError maps domain errors to responses. Nothing a failed handler
// produced reaches the client.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	c.Response().ResetBody()

	var fe *fiber.Error
	switch {
	case perrors.IsNotFound(err):
		return s.notFound(c, err.Error())
	case errors.As(err, &fe) && fe.Code == fiber.StatusNotFound:
		return s.notFound(c, fmt.Sprintf("no page at %s", c.Path()))
	case errors.As(err, &fe):
		return c.Status(fe.Code).SendString(fe.Message)
	}

	event := s.logger.Error()
	if perrors.IsContractViolation(err) {
		event = event.Bool("contract_violation", true)
	}
	event.Err(err).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Str("request_id", requestid.Get(c)).
		Msg("unhandled error")

	return c.Status(fiber.StatusInternalServerError).SendString("An internal error occurred")
}

func (s *Server) notFound(c *fiber.Ctx, detail string) error {
	var buf bytes.Buffer
	if err := s.docs.WriteNotFound(&buf, detail); err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Not Found")
	}
	return sendHTML(c, fiber.StatusNotFound, &buf)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start(addr string) error {
	if addr == "" {
		addr = ":8080"
	}
	s.logger.Info().Str("addr", addr).Msg("documentation server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("documentation server shutting down")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}
