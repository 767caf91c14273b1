package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jlozanoz/normateca/internal/bootstrap"
	"github.com/jlozanoz/normateca/internal/config"
	"github.com/jlozanoz/normateca/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// stdout carries the MCP protocol, so all logging goes to stderr.
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	mcpServer := server.NewMCPServer(
		"normateca",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	retrievalCfg := app.RetrievalConfig()
	mcpServer.AddTool(createRetrieveFragmentsTool(), handleRetrieveFragments(app.RetrieveUC, retrievalCfg, cfg.RetrievalTopK, logger))
	mcpServer.AddTool(createAskQuestionTool(), handleAskQuestion(app.AnswerUC, cfg.RetrievalTopK, logger))
	mcpServer.AddTool(createListInventoryTool(), handleListInventory(app.InventoryUC, logger))

	logger.Info("mcp server starting on stdio")
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
