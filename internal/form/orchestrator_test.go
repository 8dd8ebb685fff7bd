package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	"github.com/Formflow-core-poc-v1/server/internal/form/state"
)

type captureTransport struct {
	store     *state.Store
	watchID   model.FormRequestID
	messages  []string
	submitted []bool // record state observed at dispatch time
	err       error
}

func (c *captureTransport) SubmitText(_ context.Context, _ string, text string) error {
	c.messages = append(c.messages, text)
	if c.store != nil {
		rec, ok := c.store.Get(c.watchID)
		c.submitted = append(c.submitted, ok && rec.IsSubmitted)
	}
	return c.err
}

type fakeInvoker struct {
	callResp   string
	callErr    error
	uploadID   string
	uploadErr  error
	calledTool string
	calledArgs map[string]any
	uploaded   []string
}

func (f *fakeInvoker) Call(_ context.Context, toolID string, args map[string]any) (string, error) {
	f.calledTool = toolID
	f.calledArgs = args
	return f.callResp, f.callErr
}

func (f *fakeInvoker) Upload(_ context.Context, name string, _ []byte) (string, error) {
	f.uploaded = append(f.uploaded, name)
	return f.uploadID, f.uploadErr
}

func newTestOrchestrator(transport *captureTransport, tools ToolInvoker) *Orchestrator {
	st := state.NewStore()
	transport.store = st
	return NewOrchestrator(st, state.NewLocks(nil), NewRegistry(), transport, tools)
}

func crawlEvent(convID, msgID string) model.ToolCallEvent {
	output := `{"websites":[{"id":"w1","name":"Acme","url":"acme.com"}]}`
	return model.ToolCallEvent{
		ConversationID: convID,
		MessageID:      msgID,
		ToolName:       ToolRenderCrawlForm + model.ToolServerDelimiter + "srv",
		Output:         &output,
	}
}

func TestHandleToolCallOpensPendingForm(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	orc := newTestOrchestrator(transport, nil)

	rec, opened := orc.HandleToolCall(ctx, crawlEvent("conv1", "msg1"))
	require.True(t, opened)
	assert.True(t, rec.Pending())
	assert.Equal(t, model.FormTypeCrawl, rec.FormType)
	assert.Equal(t, "render_crawl_form", rec.ToolName)
	assert.Equal(t, "srv", rec.ServerName)
	assert.True(t, orc.Locks().Blocked("conv1"))

	bundle, ok := rec.Options.(model.CrawlOptions)
	require.True(t, ok)
	assert.Equal(t, "w1", bundle.Websites[0].ID)
}

func TestHandleToolCallEmptyBundleNeverOpens(t *testing.T) {
	ctx := context.Background()
	orc := newTestOrchestrator(&captureTransport{}, nil)

	empty := `[]`
	_, opened := orc.HandleToolCall(ctx, model.ToolCallEvent{
		ConversationID: "conv1",
		MessageID:      "msg1",
		ToolName:       ToolRenderCrawlForm,
		Output:         &empty,
	})
	assert.False(t, opened)
	assert.False(t, orc.Locks().Blocked("conv1"))
}

func TestHandleToolCallIgnoresUnknownAndNilOutput(t *testing.T) {
	ctx := context.Background()
	orc := newTestOrchestrator(&captureTransport{}, nil)

	output := `{"websites":[{"id":"w1","name":"Acme","url":"acme.com"}]}`
	_, opened := orc.HandleToolCall(ctx, model.ToolCallEvent{
		ConversationID: "conv1", MessageID: "m1", ToolName: "search_product", Output: &output,
	})
	assert.False(t, opened)

	_, opened = orc.HandleToolCall(ctx, model.ToolCallEvent{
		ConversationID: "conv1", MessageID: "m1", ToolName: ToolRenderCrawlForm, Output: nil,
	})
	assert.False(t, opened)
	assert.False(t, orc.Locks().Blocked("conv1"))
}

func TestReplayAfterTerminalIsNoOp(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	orc := newTestOrchestrator(transport, nil)

	ev := crawlEvent("conv1", "msg1")
	rec, _ := orc.HandleToolCall(ctx, ev)
	id := model.FormRequestID(rec.RequestID)

	require.NoError(t, orc.Submit(ctx, "conv1", id, map[string]any{"website_id": "w1"}, nil))
	require.Len(t, transport.messages, 1)

	// history replay of the same event
	_, opened := orc.HandleToolCall(ctx, ev)
	assert.False(t, opened, "terminal record must not reopen")
	assert.False(t, orc.Locks().Blocked("conv1"), "lock must not be reacquired")
	assert.Len(t, transport.messages, 1, "no message may be resent")
}

func TestDetachReleasesLockAndKeepsRecordPending(t *testing.T) {
	ctx := context.Background()
	orc := newTestOrchestrator(&captureTransport{}, nil)

	ev := crawlEvent("conv1", "msg1")
	rec, _ := orc.HandleToolCall(ctx, ev)
	id := model.FormRequestID(rec.RequestID)

	orc.Detach(ctx, "conv1")
	assert.False(t, orc.Locks().Blocked("conv1"))

	stored, ok := orc.Store().Get(id)
	require.True(t, ok)
	assert.True(t, stored.Pending(), "detach must not cancel the record")

	// the user returns: the same event re-surfaces the pending form
	resumed, opened := orc.HandleToolCall(ctx, ev)
	require.True(t, opened)
	assert.Equal(t, stored, resumed)
	assert.True(t, orc.Locks().Blocked("conv1"))
}

func TestSubmitMarksRecordBeforeDispatch(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	orc := newTestOrchestrator(transport, nil)

	rec, _ := orc.HandleToolCall(ctx, crawlEvent("conv1", "msg1"))
	id := model.FormRequestID(rec.RequestID)
	transport.watchID = id

	require.NoError(t, orc.Submit(ctx, "conv1", id, map[string]any{"website_id": "w1"}, nil))

	require.Len(t, transport.submitted, 1)
	assert.True(t, transport.submitted[0], "record must be submitted before the message is dispatched")
	assert.False(t, orc.Locks().Blocked("conv1"))
}

func TestSubmitResolvesLabels(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	orc := newTestOrchestrator(transport, nil)

	rec, _ := orc.HandleToolCall(ctx, crawlEvent("conv1", "msg1"))
	id := model.FormRequestID(rec.RequestID)

	require.NoError(t, orc.Submit(ctx, "conv1", id, map[string]any{"website_id": "w1", "depth": 2}, nil))

	require.Len(t, transport.messages, 1)
	assert.Contains(t, transport.messages[0], "Acme (acme.com)", "id must resolve to its label")
	assert.Contains(t, transport.messages[0], "Depth: 2")
	assert.NotContains(t, transport.messages[0], "w1")
}

func TestSubmitLabelFallsBackToRawID(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	orc := newTestOrchestrator(transport, nil)

	rec, _ := orc.HandleToolCall(ctx, crawlEvent("conv1", "msg1"))
	id := model.FormRequestID(rec.RequestID)

	require.NoError(t, orc.Submit(ctx, "conv1", id, map[string]any{"website_id": "w999"}, nil))
	assert.Contains(t, transport.messages[0], "w999")
}

func TestCancelDispatchesNeutralMessageOnce(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	orc := newTestOrchestrator(transport, nil)

	rec, _ := orc.HandleToolCall(ctx, crawlEvent("conv1", "msg1"))
	id := model.FormRequestID(rec.RequestID)

	require.NoError(t, orc.Cancel(ctx, "conv1", id))
	stored, _ := orc.Store().Get(id)
	assert.True(t, stored.IsCancelled)
	assert.False(t, orc.Locks().Blocked("conv1"))
	require.Equal(t, []string{CancelledMessage}, transport.messages)

	// cancelling again does nothing
	require.NoError(t, orc.Cancel(ctx, "conv1", id))
	assert.Len(t, transport.messages, 1)
}

func TestSubmitUnknownIDFails(t *testing.T) {
	orc := newTestOrchestrator(&captureTransport{}, nil)
	err := orc.Submit(context.Background(), "conv1", "nope", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownForm)
}

func TestSubmitWithToolFailureReportsFailedStatus(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	tools := &fakeInvoker{callErr: errors.New("backend exploded")}
	orc := newTestOrchestrator(transport, tools)

	rec, _ := orc.HandleToolCall(ctx, crawlEvent("conv1", "msg1"))
	id := model.FormRequestID(rec.RequestID)

	err := orc.Submit(ctx, "conv1", id, map[string]any{"website_id": "w1"},
		&ToolAction{ToolID: "start_crawl", Args: map[string]any{"depth": 1}})
	require.NoError(t, err, "downstream failure must not fail the episode")

	stored, _ := orc.Store().Get(id)
	assert.True(t, stored.IsSubmitted, "episode completes even though the action failed")
	assert.Contains(t, transport.messages[0], "Status: Failed")
	assert.False(t, orc.Locks().Blocked("conv1"))
}

func TestSubmitWithUploadAttachesDocumentID(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	tools := &fakeInvoker{uploadID: "cfg1", callResp: `{"status":"ok","operation_id":"op-77"}`}
	orc := newTestOrchestrator(transport, tools)

	rec, _ := orc.HandleToolCall(ctx, crawlEvent("conv1", "msg1"))
	id := model.FormRequestID(rec.RequestID)

	err := orc.Submit(ctx, "conv1", id, map[string]any{"website_id": "w1"}, &ToolAction{
		ToolID:     "start_crawl",
		Args:       map[string]any{"depth": 1},
		Attachment: &Attachment{Name: "seed-list.csv", Content: []byte("acme.com")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"seed-list.csv"}, tools.uploaded)
	assert.Equal(t, "cfg1", tools.calledArgs["document_id"])
	assert.Contains(t, transport.messages[0], "Status: Success")
	assert.Contains(t, transport.messages[0], "op-77")
}

func TestSubmitWithUploadFailureStillCompletes(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	tools := &fakeInvoker{uploadErr: errors.New("put returned 500")}
	orc := newTestOrchestrator(transport, tools)

	rec, _ := orc.HandleToolCall(ctx, crawlEvent("conv1", "msg1"))
	id := model.FormRequestID(rec.RequestID)

	err := orc.Submit(ctx, "conv1", id, map[string]any{"website_id": "w1"}, &ToolAction{
		ToolID:     "start_crawl",
		Attachment: &Attachment{Name: "seed-list.csv", Content: []byte("acme.com")},
	})
	require.NoError(t, err)

	assert.Empty(t, tools.calledTool, "tool must not be invoked when the upload failed")
	assert.Contains(t, transport.messages[0], "Status: Failed")
	assert.False(t, orc.Locks().Blocked("conv1"))
}

func TestTransportFailureStillReleasesLock(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{err: errors.New("transport down")}
	orc := newTestOrchestrator(transport, nil)

	rec, _ := orc.HandleToolCall(ctx, crawlEvent("conv1", "msg1"))
	id := model.FormRequestID(rec.RequestID)

	require.NoError(t, orc.Submit(ctx, "conv1", id, map[string]any{"website_id": "w1"}, nil))
	assert.False(t, orc.Locks().Blocked("conv1"))
}

func TestConcurrentConversationsDoNotLeakState(t *testing.T) {
	ctx := context.Background()
	transport := &captureTransport{}
	orc := newTestOrchestrator(transport, nil)

	recA, _ := orc.HandleToolCall(ctx, crawlEvent("convA", "msg1"))
	recB, _ := orc.HandleToolCall(ctx, crawlEvent("convB", "msg1"))
	require.NotEqual(t, recA.RequestID, recB.RequestID)

	require.NoError(t, orc.Cancel(ctx, "convA", model.FormRequestID(recA.RequestID)))
	assert.False(t, orc.Locks().Blocked("convA"))
	assert.True(t, orc.Locks().Blocked("convB"), "resolving one conversation must not unlock another")

	stored, _ := orc.Store().Get(model.FormRequestID(recB.RequestID))
	assert.True(t, stored.Pending())
}
