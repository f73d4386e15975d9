package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dasscoax/freshdesk-mcp/internal/cache"
	"github.com/dasscoax/freshdesk-mcp/internal/config"
	"github.com/dasscoax/freshdesk-mcp/internal/freshdesk"
	"github.com/dasscoax/freshdesk-mcp/internal/observability"
	"github.com/dasscoax/freshdesk-mcp/internal/resolver"
	"github.com/dasscoax/freshdesk-mcp/internal/service"
	"github.com/dasscoax/freshdesk-mcp/internal/tools"
	"github.com/dasscoax/freshdesk-mcp/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	client := freshdesk.NewClient(cfg.Freshdesk, logger, metrics)

	var redis *cache.Redis
	var resolverCache resolver.Cache
	if cfg.Redis.Enabled() {
		redis = cache.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		resolverCache = cache.NewResolverCache(redis, cfg.Resolver.CacheTTL(), logger)
	}

	agents := resolver.New(client, resolverCache, logger, cfg.Resolver.MaxPages)

	ticketService := service.NewTicketService(service.TicketDependencies{
		Provider:   client,
		Resolver:   agents,
		Logger:     logger,
		L2TeamName: cfg.Freshdesk.L2TeamName,
	})

	mcpServer := tools.NewServer(cfg.App.Name, cfg.App.Version, tools.ToolConfig{
		Service: ticketService,
		Logger:  logger,
		Metrics: metrics,
		Timeout: cfg.App.RequestTimeout(),
	})

	switch cfg.App.Transport {
	case config.TransportHTTP:
		httpServer := transport.NewHTTPServer(cfg.App, transport.HTTPDependencies{
			MCP:     mcpServer,
			Metrics: metrics,
			Redis:   redis,
		}, logger)

		go func() {
			if err := httpServer.Start(cfg.App.Addr()); err != nil {
				logger.Fatal("http listen", zap.Error(err))
			}
		}()

		waitForShutdown(logger)

		_ = httpServer.Shutdown()
	default:
		logger.Info("serving on stdio", zap.String("service", cfg.App.Name))
		if err := server.ServeStdio(mcpServer); err != nil {
			logger.Fatal("stdio serve", zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
