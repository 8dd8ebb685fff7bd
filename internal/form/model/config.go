package model

// ================ Config ================
type ToolAPIConfig struct {
	BaseURL        string `envconfig:"TOOL_API_BASE_URL" required:"true"`
	Token          string `envconfig:"TOOL_API_TOKEN" required:"true"`
	TimeoutSeconds int    `envconfig:"TOOL_API_TIMEOUT_SECONDS" default:"30"`
}

type ConversationConfig struct {
	TTL string `envconfig:"CONVERSATION_TTL" default:"15m"`
	Form struct {
		MaxPending int `envconfig:"CONVERSATION_FORM_MAX_PENDING" default:"1"`
	}
}
