package tools

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/Formflow-core-poc-v1/server/internal/form"
	"github.com/Formflow-core-poc-v1/server/internal/form/model"
)

// ===================================
// Form-triggering demo tools
// ===================================
//
// These are the agent-side counterparts of the form registry: eino tools the
// demo graph can call, each answering with the option payload the matching
// parser expects. Production deployments replace them with remote tools; the
// orchestrator only ever sees the output string.

type RenderCrawlFormInput struct {
	Topic string `json:"topic"`
}

func createRenderCrawlFormTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: form.ToolRenderCrawlForm,
			Desc: "Ask the user to configure a website crawl. Returns the selectable websites; the UI renders the crawl form from them.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"topic": {
					Type: "string",
					Desc: "Optional topic used to narrow the website list.",
				},
			}),
		},
		func(ctx context.Context, in *RenderCrawlFormInput) (string, error) {
			return sonic.MarshalString(map[string]any{
				"websites": MockWebsites,
			})
		},
	)
}

type RenderKeywordFormInput struct {
	Campaign string `json:"campaign"`
}

func createRenderKeywordFormTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: form.ToolRenderKeywordForm,
			Desc: "Ask the user to pick a keyword source for a campaign. Returns the selectable sources; the UI renders the keyword form from them.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"campaign": {
					Type: "string",
					Desc: "Campaign the keywords are collected for.",
				},
			}),
		},
		func(ctx context.Context, in *RenderKeywordFormInput) (string, error) {
			return sonic.MarshalString(map[string]any{
				"sources": MockKeywordSources,
			})
		},
	)
}

// All returns every form-triggering demo tool, ready to register on a graph
// alongside the observer callbacks.
func All() []tool.BaseTool {
	return []tool.BaseTool{
		createRenderCrawlFormTool(),
		createRenderKeywordFormTool(),
	}
}

// MockWebsites is the demo crawl inventory.
var MockWebsites = []model.Website{
	{ID: "w1", Name: "Acme", URL: "acme.com"},
	{ID: "w2", Name: "Globex", URL: "globex.io"},
	{ID: "w3", Name: "Initech", URL: "initech.dev"},
}

// MockKeywordSources is the demo keyword source inventory.
var MockKeywordSources = []model.KeywordSource{
	{ID: "s1", Name: "Search console", Description: "organic queries"},
	{ID: "s2", Name: "Competitor scan", Description: "keywords competitors rank for"},
}
