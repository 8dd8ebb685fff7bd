package model

import "strings"

// ToolServerDelimiter separates the function name from the server name in a
// remote tool invocation ("crawl_form⟂leadgen"). Local tools carry no delimiter.
const ToolServerDelimiter = "⟂"

// RequestIDMarker prefixes the request token some tools embed in their output
// so the same invocation resolves to the same form episode across re-renders.
const RequestIDMarker = "request_id::"

// ToolCallEvent is the per-render input delivered by the conversation
// transport whenever a tool call finishes. Output is nil while the call is
// still running.
type ToolCallEvent struct {
	ConversationID string
	MessageID      string
	ToolName       string
	Output         *string
}

// SplitToolName splits a transport tool name into its function and server
// parts. remote reports whether the delimiter was present at all.
func SplitToolName(toolName string) (function, server string, remote bool) {
	if idx := strings.Index(toolName, ToolServerDelimiter); idx >= 0 {
		return toolName[:idx], toolName[idx+len(ToolServerDelimiter):], true
	}
	return toolName, "", false
}

// FormRequestID uniquely identifies one human-input episode.
type FormRequestID string

// FormType enumerates the closed set of form variants this subsystem can
// render. Unknown tool names never map to a FormType.
type FormType string

const (
	FormTypeCrawl        FormType = "crawl"
	FormTypeOutreach     FormType = "outreach"
	FormTypeCustomFields FormType = "custom_fields"
	FormTypeKeywords     FormType = "keywords"
	FormTypeMarkdown     FormType = "markdown"
)

// FormRecord is the unit of state kept per FormRequestID. Once IsSubmitted or
// IsCancelled is set the record is terminal and must never be mutated again;
// the store enforces this.
type FormRecord struct {
	IsSubmitted   bool
	IsCancelled   bool
	ToolName      string
	ServerName    string
	RequestID     string
	FormType      FormType
	Options       OptionBundle
	RawOutput     string
	SubmittedData map[string]any
}

// Terminal reports whether the record reached a final state.
func (r *FormRecord) Terminal() bool {
	return r.IsSubmitted || r.IsCancelled
}

// Pending reports whether the record exists but has not been resolved yet.
func (r *FormRecord) Pending() bool {
	return !r.Terminal()
}
