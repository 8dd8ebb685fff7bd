package parsers

import (
	"regexp"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
)

var fencedMarkdownRe = regexp.MustCompile("(?s)```markdown\\s*\\n(.*?)```")

// ParseMarkdownOptions unwraps markdown content from its triple-nested
// wrapping: a content-block array whose text holds another content-block
// array whose text holds the document itself. When the structured path fails
// for any reason, the first fenced markdown block in the raw output is used
// instead; both paths converge on the same plain-text result.
func ParseMarkdownOptions(raw string) (bundle model.MarkdownOptions) {
	defer recoverEmpty("markdown_parser", raw)

	if content, ok := unwrapMarkdown(raw); ok {
		return model.MarkdownOptions{Content: content}
	}

	if m := fencedMarkdownRe.FindStringSubmatch(raw); m != nil {
		content := strings.TrimSpace(m[1])
		if content != "" {
			lg := logx.Component("markdown_parser")
			lg.Debug().Msg("structured unwrap failed, recovered via fenced block")
			return model.MarkdownOptions{Content: content}
		}
	}

	return model.MarkdownOptions{}
}

func unwrapMarkdown(raw string) (string, bool) {
	inner, ok := unwrapContentBlocks(raw)
	if !ok {
		return "", false
	}
	// second unwrap: the inner text is itself a wrapped array
	if nested, ok := unwrapContentBlocks(inner); ok {
		inner = nested
	}

	// the terminal document is either a {content} object or the text itself
	if looksLikeJSON(inner) {
		var payload struct {
			Content string `json:"content"`
		}
		if err := sonic.UnmarshalString(inner, &payload); err == nil && payload.Content != "" {
			return strings.TrimSpace(payload.Content), true
		}
		return "", false
	}

	content := strings.TrimSpace(inner)
	if content == "" {
		return "", false
	}
	return content, true
}
