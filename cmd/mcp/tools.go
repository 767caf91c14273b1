package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createRetrieveFragmentsTool returns the retrieve_fragments tool definition
func createRetrieveFragmentsTool() mcp.Tool {
	return mcp.NewTool("retrieve_fragments",
		mcp.WithDescription("Retrieve ranked document fragments for a question using multi-strategy search (semantic, lexical, metadata, expansion)"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural-language question, Spanish or English"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Maximum fragments to return (default: 5, max: 20)"),
		),
	)
}

// createAskQuestionTool returns the ask_question tool definition
func createAskQuestionTool() mcp.Tool {
	return mcp.NewTool("ask_question",
		mcp.WithDescription("Answer a question grounded in the indexed regulatory documents, citing sources"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural-language question, Spanish or English"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Maximum fragments to ground the answer on (default: 5)"),
		),
	)
}

// createListInventoryTool returns the list_inventory tool definition
func createListInventoryTool() mcp.Tool {
	return mcp.NewTool("list_inventory",
		mcp.WithDescription("List the indexed source documents with fragment counts and labels"),
	)
}
