package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamesprial/odb-target-loader/internal/catalog"
	"github.com/jamesprial/odb-target-loader/internal/odb"
	"github.com/jamesprial/odb-target-loader/internal/safety"
	"github.com/jamesprial/odb-target-loader/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const toolNameCatalogLoad = "catalog_load"

// CreatingTools lists the tools in this package that create remote entities.
var CreatingTools = []string{toolNameCatalogLoad}

type outcomeView struct {
	Target     string          `json:"target"`
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Created    json.RawMessage `json:"created,omitempty"`
	Errors     json.RawMessage `json:"errors,omitempty"`
}

type loadOutput struct {
	Summary  Summary       `json:"summary"`
	Outcomes []outcomeView `json:"outcomes"`
	Error    string        `json:"error,omitempty"`
}

// LoadTools returns the catalog_load registration. Each confirmed call runs
// a fresh Loader built with opts over the targets matching the optional
// pattern.
func LoadTools(targets []catalog.Target, sub odb.TargetSubmitter, confirm *safety.ConfirmationTracker, audit *safety.AuditLogger, opts ...Option) []tools.Registration {
	tool := mcp.NewTool(toolNameCatalogLoad,
		mcp.WithDescription("Create every catalog target in order, stopping at the first server or transport failure. Not idempotent."),
		mcp.WithString("pattern",
			mcp.Description("Glob over target names selecting what to load (default: all)."),
		),
		mcp.WithString(tools.ConfirmationTokenArg,
			mcp.Description("Token returned by a previous call; required to actually load."),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		pattern := req.GetString("pattern", "*")
		token := req.GetString(tools.ConfirmationTokenArg, "")
		params := map[string]any{"pattern": pattern}

		filter, err := safety.NewFilter([]string{pattern}, nil)
		if err != nil {
			tools.LogAudit(audit, toolNameCatalogLoad, pattern, params, "error: "+err.Error(), start)
			return tools.ErrorResult(err.Error()), nil
		}
		selected := catalog.Select(targets, filter.IsAllowed)
		if len(selected) == 0 {
			msg := fmt.Sprintf("no catalog targets match %q", pattern)
			tools.LogAudit(audit, toolNameCatalogLoad, pattern, params, "error: "+msg, start)
			return tools.ErrorResult(msg), nil
		}

		if confirm != nil && confirm.NeedsConfirmation(toolNameCatalogLoad) {
			if token == "" {
				tools.LogAudit(audit, toolNameCatalogLoad, pattern, params, "confirmation requested", start)
				return tools.ConfirmPrompt(confirm, toolNameCatalogLoad, pattern,
					fmt.Sprintf("This creates %d new targets: %v.", len(selected), catalog.Names(selected))), nil
			}
			if !confirm.Confirm(token, toolNameCatalogLoad, pattern) {
				tools.LogAudit(audit, toolNameCatalogLoad, pattern, params, "error: invalid confirmation token", start)
				return tools.ErrorResult("invalid or expired confirmation token"), nil
			}
		}

		var col Collector
		sum, runErr := New(sub, &col, opts...).Run(ctx, selected)

		out := loadOutput{Summary: sum, Outcomes: make([]outcomeView, 0, len(selected))}
		for _, o := range col.Outcomes() {
			out.Outcomes = append(out.Outcomes, outcomeView{
				Target:     o.Result.Target,
				Status:     o.Result.Status.String(),
				StatusCode: o.Result.StatusCode,
				Created:    o.Result.Payload,
				Errors:     o.Result.Errors,
			})
		}

		result := fmt.Sprintf("exit %d", sum.ExitCode())
		if runErr != nil {
			out.Error = runErr.Error()
			result = "error: " + runErr.Error()
		}
		tools.LogAudit(audit, toolNameCatalogLoad, pattern, params, result, start)

		res := tools.JSONResult(out)
		res.IsError = runErr != nil
		return res, nil
	}

	return []tools.Registration{{Tool: tool, Handler: server.ToolHandlerFunc(handler)}}
}
