package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jamesprial/odb-target-loader/internal/safety"
	"github.com/jamesprial/odb-target-loader/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const toolNameGraphQLQuery = "graphql_query"

// errNotQuery is returned by checkReadOnly for documents that would change
// remote state.
var errNotQuery = errors.New("only queries are allowed; use target_submit or catalog_load to create targets")

// checkReadOnly parses document and fails unless every operation in it is a
// query.
func checkReadOnly(document string) error {
	doc, err := parser.ParseQuery(&ast.Source{Input: document})
	if err != nil {
		return fmt.Errorf("invalid query document: %v", err)
	}
	if len(doc.Operations) == 0 {
		return errors.New("invalid query document: no operation")
	}
	for _, op := range doc.Operations {
		if op.Operation != ast.Query {
			return errNotQuery
		}
	}
	return nil
}

// queryOutput is what graphql_query returns to the caller.
type queryOutput struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

// GraphQLTools returns the read-only graphql_query escape hatch for
// inspecting the observing database directly.
func GraphQLTools(client Client, audit *safety.AuditLogger) []tools.Registration {
	return []tools.Registration{
		toolGraphQLQuery(client, audit),
	}
}

func toolGraphQLQuery(client Client, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(toolNameGraphQLQuery,
		mcp.WithDescription("Run a read-only GraphQL query against the observing database, e.g. to check which targets a program already owns. Mutations are refused."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The GraphQL query document."),
		),
		mcp.WithString("variables",
			mcp.Description("Optional JSON object string of variables to pass with the query."),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		query := req.GetString("query", "")
		variablesStr := req.GetString("variables", "")
		params := map[string]any{
			"query":     query,
			"variables": variablesStr,
		}

		fail := func(msg string) (*mcp.CallToolResult, error) {
			tools.LogAudit(audit, toolNameGraphQLQuery, "", params, "error: "+msg, start)
			return tools.ErrorResult(msg), nil
		}

		if query == "" {
			return fail("query is required")
		}
		if err := checkReadOnly(query); err != nil {
			return fail(err.Error())
		}

		var vars map[string]any
		if variablesStr != "" {
			if err := json.Unmarshal([]byte(variablesStr), &vars); err != nil {
				return fail(fmt.Sprintf("parse variables JSON: %v", err))
			}
		}

		gqlReq := Request{Query: query}
		if vars != nil {
			gqlReq.Variables = vars
		}
		resp, err := client.Post(ctx, gqlReq)
		if err != nil {
			return fail(err.Error())
		}

		// Unmarshal so tools.JSONResult can pretty-print it; fall back to the
		// raw text for non-JSON bodies.
		var body any
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			body = string(resp.Body)
		}

		tools.LogAudit(audit, toolNameGraphQLQuery, "", params, fmt.Sprintf("HTTP %d", resp.StatusCode), start)
		return tools.JSONResult(queryOutput{StatusCode: resp.StatusCode, Body: body}), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
