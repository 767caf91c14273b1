package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jlozanoz/normateca/internal/core/domain"
	"github.com/jlozanoz/normateca/internal/core/ports"
)

const maxToolTopK = 20

// handleRetrieveFragments implements the retrieve_fragments tool
func handleRetrieveFragments(retriever ports.FragmentRetriever, cfg domain.RetrievalConfig, defaultTopK int, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return toolText("Error: question parameter is required"), nil
		}

		topK := request.GetInt("top_k", defaultTopK)
		if topK > maxToolTopK {
			topK = maxToolTopK
		}

		result, err := retriever.Retrieve(ctx, question, topK, cfg)
		if err != nil {
			logger.Error("retrieve failed", "error", err)
			return toolText(fmt.Sprintf("Retrieval error: %v", err)), nil
		}

		return toolText(formatRankedResult(question, result)), nil
	}
}

// handleAskQuestion implements the ask_question tool
func handleAskQuestion(answerer ports.AnswerService, defaultTopK int, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return toolText("Error: question parameter is required"), nil
		}

		topK := request.GetInt("top_k", defaultTopK)
		if topK > maxToolTopK {
			topK = maxToolTopK
		}

		answer, err := answerer.Answer(ctx, question, topK)
		if err != nil {
			logger.Error("answer failed", "error", err)
			return toolText(fmt.Sprintf("Answer error: %v", err)), nil
		}

		return toolText(formatAnswer(answer)), nil
	}
}

// handleListInventory implements the list_inventory tool
func handleListInventory(inventory ports.InventoryService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inv, err := inventory.ListInventory(ctx)
		if err != nil {
			logger.Error("inventory failed", "error", err)
			return toolText(fmt.Sprintf("Inventory error: %v", err)), nil
		}

		return toolText(formatInventory(inv)), nil
	}
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}
