package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common plan and support questions.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("choose_plan").
		Description("Recommend a plan for a described team and workload.").
		Argument("needs", "Who will use the assistants and what they want to automate", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			needs := args["needs"]
			if needs == "" {
				needs = "[Describe the team size, assistants wanted and workflows to automate]"
			}

			return &mcp.PromptResult{
				Description: "Plan Recommendation",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`Help me pick a Consulta plan.

**Needs:** %s

Please:
1. Read the catalog from the consulta://plans resource
2. Compare the assistants and automation quota of each plan against the needs
3. Recommend the cheapest plan that covers them, with the monthly and annual price
4. Mention what the next plan up would add

If I am logged in, check billing.entitlements with my session_token first and
say whether my current plan already covers the needs.`, needs),
						},
					},
				},
			}, nil
		})

	srv.Prompt("subscription_review").
		Description("Summarize the caller's subscription and what happens when it expires.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return &mcp.PromptResult{
				Description: "Subscription Review",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: `Review my Consulta subscription. Please:

1. Call billing.dashboard with my session_token
2. Tell me my plan, status and how long until it expires
3. If I am on a trial or close to expiry, compare renewing monthly and annually
   using the consulta://plans resource
4. List the assistants and support channels I would lose by not renewing

Do not start a checkout unless I ask for one.`,
						},
					},
				},
			}, nil
		})

	srv.Prompt("support_request").
		Description("Draft and file a support ticket for a problem.").
		Argument("problem", "What went wrong", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			problem := args["problem"]
			if problem == "" {
				problem = "[Describe the problem]"
			}

			return &mcp.PromptResult{
				Description: "Support Request",
				Messages: []mcp.PromptMessage{
					{
						Role: string(mcp.RoleUser),
						Content: mcp.TextContent{
							Type: "text",
							Text: fmt.Sprintf(`I need help with Consulta.

**Problem:** %s

Please:
1. Check support.level with my session_token to see which channels I can use
2. Pick a category (technical, billing, account, feature or other) and a priority
3. Write a short subject and a description with the steps to reproduce
4. Show me the draft, then file it with support.open_ticket once I confirm`, problem),
						},
					},
				},
			}, nil
		})

	return nil
}
