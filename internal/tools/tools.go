// Package tools provides shared types and helpers for the MCP tools that
// expose the target catalog.
package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamesprial/odb-target-loader/internal/safety"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ConfirmationTokenArg is the argument name carrying a confirmation token on
// gated tools.
const ConfirmationTokenArg = "confirmation_token"

// Registration pairs an MCP tool definition with its handler function.
type Registration struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// RegisterAll adds every Registration to s and returns the registered tool
// names in order.
func RegisterAll(s *server.MCPServer, registrations []Registration) []string {
	names := make([]string, 0, len(registrations))
	for _, r := range registrations {
		s.AddTool(r.Tool, r.Handler)
		names = append(names, r.Tool.Name)
	}
	return names
}

// JSONResult marshals v to indented JSON and returns an mcp.CallToolResult.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error marshaling result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ErrorResult returns an mcp.CallToolResult flagged as an error.
func ErrorResult(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("error: %s", msg))
}

// LogAudit records a tool invocation, silently ignoring a nil logger.
func LogAudit(audit *safety.AuditLogger, toolName, target string, params map[string]any, result string, start time.Time) {
	if audit == nil {
		return
	}
	_ = audit.Log(safety.AuditEntry{
		Timestamp: start,
		Action:    toolName,
		Target:    target,
		Params:    params,
		Result:    result,
		Duration:  time.Since(start),
	})
}

// ConfirmPrompt issues a confirmation token for calling toolName on target
// and returns the prompt telling the caller how to proceed.
func ConfirmPrompt(confirm *safety.ConfirmationTracker, toolName, target, description string) *mcp.CallToolResult {
	token := confirm.RequestConfirmation(toolName, target)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Confirmation required for %s on %q.\n\n%s\n\nTo proceed, call %s again with %s=%q.",
		toolName, target, description, toolName, ConfirmationTokenArg, token,
	))
}
