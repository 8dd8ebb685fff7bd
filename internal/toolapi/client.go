package toolapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	errx "github.com/Formflow-core-poc-v1/server/internal/core/error"
	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
	"github.com/rs/zerolog"
)

// Client talks to the tool execution backend: bearer-token authenticated JSON
// calls plus the two-phase document upload.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg model.ToolAPIConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: logx.Component("toolapi"),
	}
}

// callEnvelope is the response body of POST /tools/{id}/call. The backend
// returns result either as a plain string or as an arbitrary object.
type callEnvelope struct {
	Result any `json:"result"`
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Call executes a tool with the given arguments and returns its result as a
// string. Object results are re-serialised so callers always get text.
func (c *Client) Call(ctx context.Context, toolID string, args map[string]any) (string, error) {
	body, err := sonic.Marshal(args)
	if err != nil {
		return "", errx.WrapToolAPI(fmt.Errorf("marshal args: %w", err), 0)
	}

	status, respBody, err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/tools/%s/call", c.baseURL, toolID), body, "application/json")
	if err != nil {
		return "", errx.WrapToolAPI(err, 0)
	}
	if status < 200 || status > 299 {
		return "", errx.WrapToolAPI(fmt.Errorf("tool %s: %s", toolID, errorText(status, respBody)), status)
	}

	var envelope callEnvelope
	if err := sonic.Unmarshal(respBody, &envelope); err != nil {
		return "", errx.WrapToolAPI(fmt.Errorf("decode response: %w", err), 0)
	}
	switch v := envelope.Result.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		text, err := sonic.MarshalString(v)
		if err != nil {
			return "", errx.WrapToolAPI(fmt.Errorf("re-encode result: %w", err), 0)
		}
		return text, nil
	}
}

func (c *Client) do(ctx context.Context, method, url string, body []byte, contentType string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// errorText extracts a usable message from a non-2xx response body.
func errorText(status int, body []byte) string {
	var envelope errorEnvelope
	if err := sonic.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return fmt.Sprintf("http status %d", status)
}
