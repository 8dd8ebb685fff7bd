package observers

import (
	"context"
	"errors"
	"io"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/Formflow-core-poc-v1/server/internal/form"
	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
)

type conversationCtxKey struct{}

type conversationRef struct {
	ConversationID string
	MessageID      string
}

// WithConversation tags the context with the conversation and message the
// current graph invocation belongs to, so tool events can be attributed.
func WithConversation(ctx context.Context, conversationID, messageID string) context.Context {
	return context.WithValue(ctx, conversationCtxKey{}, conversationRef{
		ConversationID: conversationID,
		MessageID:      messageID,
	})
}

func conversationFromContext(ctx context.Context) (conversationRef, bool) {
	ref, ok := ctx.Value(conversationCtxKey{}).(conversationRef)
	return ref, ok
}

// newToolHandler bridges finished tool calls into the form orchestrator.
// Results stream or not, only the terminal output matters here; errors and
// still-running calls are delivered as nil-output events that never open a
// form.
func newToolHandler(orc *form.Orchestrator) *callbackHelper.ToolCallbackHandler {
	log := logx.Component("form_observer")
	deliver := func(ctx context.Context, toolName string, output *string) {
		ref, ok := conversationFromContext(ctx)
		if !ok {
			log.Debug().Str("tool", toolName).Msg("tool event without conversation context")
			return
		}
		orc.HandleToolCall(ctx, model.ToolCallEvent{
			ConversationID: ref.ConversationID,
			MessageID:      ref.MessageID,
			ToolName:       toolName,
			Output:         output,
		})
	}

	return &callbackHelper.ToolCallbackHandler{
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *tool.CallbackOutput) context.Context {
			resp := output.Response
			deliver(ctx, info.Name, &resp)
			return ctx
		},
		OnEndWithStreamOutput: func(ctx context.Context, info *einocb.RunInfo, output *schema.StreamReader[*tool.CallbackOutput]) context.Context {
			go func() {
				defer output.Close()
				var full string
				for {
					chunk, err := output.Recv()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						deliver(ctx, info.Name, nil)
						return
					}
					full += chunk.Response
				}
				deliver(ctx, info.Name, &full)
			}()
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			log.Debug().Err(err).Str("tool", info.Name).Msg("tool execution failed")
			deliver(ctx, info.Name, nil)
			return ctx
		},
	}
}

// NewToolCallbacks constructs a callbacks.Handler that feeds finished tool
// calls into the orchestrator. Attach it via compose.WithCallbacks(...) when
// invoking the agent graph.
func NewToolCallbacks(orc *form.Orchestrator) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		Tool(newToolHandler(orc)).
		Handler()
}
