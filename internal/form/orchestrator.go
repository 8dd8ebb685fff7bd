package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	"github.com/Formflow-core-poc-v1/server/internal/form/state"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
	"github.com/rs/zerolog"
)

// ErrUnknownForm is returned when a submit or cancel references a request id
// that never opened a form.
var ErrUnknownForm = errors.New("no form record for request id")

// MessageSubmitter appends a user-authored message to the conversation so the
// agent can continue. Implemented by the conversation transport.
type MessageSubmitter interface {
	SubmitText(ctx context.Context, conversationID, text string) error
}

// ToolInvoker executes a backend tool and uploads binary payloads. Implemented
// by the tool API client; the upload is the two-phase create/put sequence with
// compensation handled inside the client.
type ToolInvoker interface {
	Call(ctx context.Context, toolID string, args map[string]any) (string, error)
	Upload(ctx context.Context, name string, payload []byte) (string, error)
}

// ToolAction describes the optional downstream call to run when a form is
// submitted. Attachment, when present, is uploaded first and its created id
// is passed to the call as document_id.
type ToolAction struct {
	ToolID     string
	Args       map[string]any
	Attachment *Attachment
}

type Attachment struct {
	Name    string
	Content []byte
}

// Orchestrator is the state machine tying parsers, store and lock together.
// Per request id the lifecycle is: no record, then pending, then exactly one
// of submitted or cancelled. All collaborators are injected so tests can run
// against fresh state.
type Orchestrator struct {
	store     *state.Store
	locks     *state.Locks
	registry  *Registry
	transport MessageSubmitter
	tools     ToolInvoker
	log       zerolog.Logger
}

func NewOrchestrator(store *state.Store, locks *state.Locks, registry *Registry, transport MessageSubmitter, tools ToolInvoker) *Orchestrator {
	return &Orchestrator{
		store:     store,
		locks:     locks,
		registry:  registry,
		transport: transport,
		tools:     tools,
		log:       logx.Component("form_orchestrator"),
	}
}

// Store exposes the record store for render-side reads.
func (o *Orchestrator) Store() *state.Store {
	return o.store
}

// Locks exposes the conversation lock table for the UI shell.
func (o *Orchestrator) Locks() *state.Locks {
	return o.locks
}

// HandleToolCall reacts to one tool-call event. When the event belongs to a
// form-triggering tool and its output parses into a valid option bundle, a
// pending record is opened and the conversation locked; the returned record
// is the form the caller should render. Replays of events whose record is
// already terminal never reopen the form, reacquire the lock or resend a
// message. A replay that finds the record still pending re-surfaces it and
// re-acquires the lock, so a user returning to the conversation can finish
// the episode.
func (o *Orchestrator) HandleToolCall(ctx context.Context, ev model.ToolCallEvent) (*model.FormRecord, bool) {
	cfg, known := o.registry.Lookup(ev.ToolName)
	if !known || !cfg.TriggerForm || ev.Output == nil {
		return nil, false
	}

	id := ResolveRequestID(*ev.Output, ev.ConversationID, ev.MessageID, ev.ToolName)

	if rec, ok := o.store.Get(id); ok {
		if rec.Terminal() {
			return nil, false
		}
		o.locks.Acquire(ctx, ev.ConversationID)
		return rec, true
	}

	bundle := cfg.Extract(*ev.Output)
	if bundle == nil || !bundle.Valid() {
		o.log.Debug().
			Str("tool", ev.ToolName).
			Str("request_id", string(id)).
			Msg("output yielded no form options")
		return nil, false
	}

	function, server, _ := model.SplitToolName(ev.ToolName)
	rec := model.FormRecord{
		ToolName:   function,
		ServerName: server,
		RequestID:  string(id),
		FormType:   cfg.Type,
		Options:    bundle,
		RawOutput:  *ev.Output,
	}
	o.store.OpenPending(id, rec)
	o.locks.Acquire(ctx, ev.ConversationID)

	o.log.Info().
		Str("conversationID", ev.ConversationID).
		Str("request_id", string(id)).
		Str("form_type", string(cfg.Type)).
		Msg("form opened")

	opened, _ := o.store.Get(id)
	return opened, true
}

// Submit completes a pending form. The record is marked submitted before the
// synthesized message is dispatched so a fast re-render cannot re-show the
// form while the message is in flight. Downstream tool failures become part
// of the message's status line; the episode still completes so the
// conversation is never left stuck.
func (o *Orchestrator) Submit(ctx context.Context, conversationID string, id model.FormRequestID, submitted map[string]any, action *ToolAction) error {
	rec, ok := o.store.Get(id)
	if !ok {
		return ErrUnknownForm
	}
	if rec.Terminal() {
		return nil
	}

	values := SubmittedDataWithLabels(rec, submitted)
	o.store.MarkSubmitted(id, submitted)

	toolResponse := o.runAction(ctx, action)

	message := SynthesizeSubmission(rec.FormType, values, toolResponse)
	if err := o.transport.SubmitText(ctx, conversationID, message); err != nil {
		o.log.Error().Err(err).
			Str("conversationID", conversationID).
			Str("request_id", string(id)).
			Msg("failed to dispatch submission message")
	}

	o.locks.Release(ctx, conversationID)
	return nil
}

// Cancel resolves a pending form without input: the record becomes cancelled,
// a fixed neutral message is dispatched and the lock is released.
func (o *Orchestrator) Cancel(ctx context.Context, conversationID string, id model.FormRequestID) error {
	rec, ok := o.store.Get(id)
	if !ok {
		return ErrUnknownForm
	}
	if rec.Terminal() {
		return nil
	}

	o.store.MarkCancelled(id)

	if err := o.transport.SubmitText(ctx, conversationID, CancelledMessage); err != nil {
		o.log.Error().Err(err).
			Str("conversationID", conversationID).
			Str("request_id", string(id)).
			Msg("failed to dispatch cancellation message")
	}

	o.locks.Release(ctx, conversationID)
	return nil
}

// Detach is the teardown safety net for a conversation whose form component
// goes away while still pending: the lock is released so the conversation is
// not permanently blocked, but the record stays pending and is re-surfaced
// by the next replay of the same tool output.
func (o *Orchestrator) Detach(ctx context.Context, conversationID string) {
	o.locks.Release(ctx, conversationID)
}

// runAction executes the optional downstream tool call. It never lets an
// error escape; every failure is folded into the returned response text so
// the caller's status line can report it.
func (o *Orchestrator) runAction(ctx context.Context, action *ToolAction) string {
	if action == nil || o.tools == nil {
		return ""
	}

	args := action.Args
	if action.Attachment != nil {
		docID, err := o.tools.Upload(ctx, action.Attachment.Name, action.Attachment.Content)
		if err != nil {
			o.log.Warn().Err(err).Str("tool", action.ToolID).Msg("attachment upload failed")
			return fmt.Sprintf("upload failed: %v", err)
		}
		args = cloneArgs(args)
		args["document_id"] = docID
	}

	resp, err := o.tools.Call(ctx, action.ToolID, args)
	if err != nil {
		o.log.Warn().Err(err).Str("tool", action.ToolID).Msg("tool invocation failed")
		return fmt.Sprintf("error: %v", err)
	}
	return resp
}

func cloneArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args)+1)
	for k, v := range args {
		out[k] = v
	}
	return out
}
