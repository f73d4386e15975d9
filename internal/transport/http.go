// Package transport hosts the HTTP serving mode: the MCP endpoint
// mounted on a Fiber app next to health and metrics routes.
package transport

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/cache"
	"github.com/dasscoax/freshdesk-mcp/internal/config"
	"github.com/dasscoax/freshdesk-mcp/internal/observability"
)

// HTTPServer serves the MCP stream over HTTP alongside operational routes.
type HTTPServer struct {
	app    *fiber.App
	cfg    config.AppConfig
	logger *zap.Logger
}

// HTTPDependencies carries everything the HTTP transport serves or probes.
type HTTPDependencies struct {
	MCP     *server.MCPServer
	Metrics *observability.Metrics
	Redis   *cache.Redis
}

// NewHTTPServer assembles the Fiber app with all routes registered.
func NewHTTPServer(cfg config.AppConfig, deps HTTPDependencies, logger *zap.Logger) *HTTPServer {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
	})

	h := &HTTPServer{app: app, cfg: cfg, logger: logger}

	app.Get("/health/live", h.live)
	app.Get("/health/ready", h.ready(deps.Redis))
	app.Get("/metrics", h.metricsSnapshot(deps.Metrics))

	streamable := server.NewStreamableHTTPServer(deps.MCP)
	app.All("/mcp", adaptor.HTTPHandler(streamable))
	app.All("/mcp/*", adaptor.HTTPHandler(streamable))

	return h
}

// Start begins serving and blocks until the listener stops.
func (h *HTTPServer) Start(addr string) error {
	h.logger.Info("http transport listening", zap.String("addr", addr))
	return h.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (h *HTTPServer) Shutdown() error {
	return h.app.Shutdown()
}

// App exposes the underlying Fiber app for tests.
func (h *HTTPServer) App() *fiber.App {
	return h.app
}

func (h *HTTPServer) live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.cfg.Name,
		"version": h.cfg.Version,
	})
}

// ready reports readiness by probing optional dependencies. With no Redis
// configured the service is ready as soon as it listens.
func (h *HTTPServer) ready(redis *cache.Redis) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		depStatus := fiber.Map{}
		ready := true

		if redis != nil {
			if err := redis.Ping(ctx); err != nil {
				depStatus["redis"] = err.Error()
				ready = false
			} else {
				depStatus["redis"] = "ok"
			}
		}

		if ready {
			return c.JSON(fiber.Map{
				"status":       "ready",
				"dependencies": depStatus,
			})
		}

		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": depStatus,
			},
		})
	}
}

func (h *HTTPServer) metricsSnapshot(metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(metrics.Snapshot())
	}
}
