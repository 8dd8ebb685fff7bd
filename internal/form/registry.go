package form

import (
	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	"github.com/Formflow-core-poc-v1/server/internal/form/parsers"
)

// FormTypeConfig binds one tool function name to its form variant and the
// pure extraction function producing its option bundle. Defined once at
// process start, never mutated.
type FormTypeConfig struct {
	TriggerForm bool
	Type        model.FormType
	Extract     func(output string) model.OptionBundle
}

// Registry is the closed set of tool functions that request human input.
// Lookup of an unknown function is an explicit "no match", not a silent nil.
type Registry struct {
	configs map[string]FormTypeConfig
}

// Tool function names that trigger forms.
const (
	ToolRenderCrawlForm        = "render_crawl_form"
	ToolRenderOutreachForm     = "render_outreach_form"
	ToolRenderCustomFieldsForm = "render_custom_fields_form"
	ToolRenderKeywordForm      = "render_keyword_form"
	ToolRenderMarkdownForm     = "render_markdown_form"
)

func NewRegistry() *Registry {
	return &Registry{
		configs: map[string]FormTypeConfig{
			ToolRenderCrawlForm: {
				TriggerForm: true,
				Type:        model.FormTypeCrawl,
				Extract: func(output string) model.OptionBundle {
					return parsers.ParseCrawlOptions(output)
				},
			},
			ToolRenderOutreachForm: {
				TriggerForm: true,
				Type:        model.FormTypeOutreach,
				Extract: func(output string) model.OptionBundle {
					return parsers.ParseOutreachOptions(output)
				},
			},
			ToolRenderCustomFieldsForm: {
				TriggerForm: true,
				Type:        model.FormTypeCustomFields,
				Extract: func(output string) model.OptionBundle {
					return parsers.ParseCustomFieldOptions(output)
				},
			},
			ToolRenderKeywordForm: {
				TriggerForm: true,
				Type:        model.FormTypeKeywords,
				Extract: func(output string) model.OptionBundle {
					return parsers.ParseKeywordOptions(output)
				},
			},
			ToolRenderMarkdownForm: {
				TriggerForm: true,
				Type:        model.FormTypeMarkdown,
				Extract: func(output string) model.OptionBundle {
					return parsers.ParseMarkdownOptions(output)
				},
			},
		},
	}
}

// Lookup resolves a transport tool name to its form configuration. The server
// suffix of remote tools is ignored for the lookup; only the function part
// selects the variant.
func (r *Registry) Lookup(toolName string) (FormTypeConfig, bool) {
	function, _, _ := model.SplitToolName(toolName)
	cfg, ok := r.configs[function]
	return cfg, ok
}
