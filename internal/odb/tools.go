package odb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamesprial/odb-target-loader/internal/catalog"
	"github.com/jamesprial/odb-target-loader/internal/safety"
	"github.com/jamesprial/odb-target-loader/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	toolNameCatalogList  = "catalog_list"
	toolNameTargetSubmit = "target_submit"
)

// CreatingTools lists the tools in this package that create remote entities.
var CreatingTools = []string{toolNameTargetSubmit}

// TargetSubmitter is the submission contract the tools and the loader use.
type TargetSubmitter interface {
	Submit(ctx context.Context, t catalog.Target) (Result, error)
}

// Compile-time interface check.
var _ TargetSubmitter = (*Submitter)(nil)

// submitOutput is the tool-facing view of a Result.
type submitOutput struct {
	Target     string          `json:"target"`
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Created    json.RawMessage `json:"created,omitempty"`
	Errors     json.RawMessage `json:"errors,omitempty"`
}

// CatalogTools returns the catalog_list and target_submit registrations for
// the given (already filtered) targets.
func CatalogTools(targets []catalog.Target, sub TargetSubmitter, confirm *safety.ConfirmationTracker, audit *safety.AuditLogger) []tools.Registration {
	return []tools.Registration{
		catalogList(targets, audit),
		targetSubmit(targets, sub, confirm, audit),
	}
}

func catalogList(targets []catalog.Target, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(toolNameCatalogList,
		mcp.WithDescription("List the sidereal targets this loader can create, in load order."),
		mcp.WithBoolean("names_only",
			mcp.Description("Return only target names instead of full records."),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		namesOnly := req.GetBool("names_only", false)
		params := map[string]any{"names_only": namesOnly}

		tools.LogAudit(audit, toolNameCatalogList, "", params, "ok", start)
		if namesOnly {
			return tools.JSONResult(catalog.Names(targets)), nil
		}
		return tools.JSONResult(targets), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func targetSubmit(targets []catalog.Target, sub TargetSubmitter, confirm *safety.ConfirmationTracker, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(toolNameTargetSubmit,
		mcp.WithDescription("Create one catalog target in the observing database. Not idempotent: every confirmed call creates a new target."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the catalog target to create."),
		),
		mcp.WithString(tools.ConfirmationTokenArg,
			mcp.Description("Token returned by a previous call; required to actually submit."),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		name := req.GetString("name", "")
		token := req.GetString(tools.ConfirmationTokenArg, "")
		params := map[string]any{"name": name}

		target, ok := catalog.Find(targets, name)
		if !ok {
			msg := fmt.Sprintf("target %q is not in the catalog", name)
			tools.LogAudit(audit, toolNameTargetSubmit, name, params, "error: "+msg, start)
			return tools.ErrorResult(msg), nil
		}

		if confirm != nil && confirm.NeedsConfirmation(toolNameTargetSubmit) {
			if token == "" {
				tools.LogAudit(audit, toolNameTargetSubmit, name, params, "confirmation requested", start)
				return tools.ConfirmPrompt(confirm, toolNameTargetSubmit, name,
					fmt.Sprintf("This creates a new target %q; repeating it creates a duplicate.", name)), nil
			}
			if !confirm.Confirm(token, toolNameTargetSubmit, name) {
				tools.LogAudit(audit, toolNameTargetSubmit, name, params, "error: invalid confirmation token", start)
				return tools.ErrorResult("invalid or expired confirmation token"), nil
			}
		}

		res, err := sub.Submit(ctx, target)
		if err != nil {
			tools.LogAudit(audit, toolNameTargetSubmit, name, params, "error: "+err.Error(), start)
			return tools.ErrorResult(err.Error()), nil
		}

		tools.LogAudit(audit, toolNameTargetSubmit, name, params, res.Status.String(), start)
		return tools.JSONResult(submitOutput{
			Target:     res.Target,
			Status:     res.Status.String(),
			StatusCode: res.StatusCode,
			Created:    res.Payload,
			Errors:     res.Errors,
		}), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
