package tools

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Formflow-core-poc-v1/server/internal/form"
	"github.com/Formflow-core-poc-v1/server/internal/form/parsers"
)

func invoke(t *testing.T, bt tool.BaseTool, args string) string {
	inv, ok := bt.(tool.InvokableTool)
	require.True(t, ok)
	out, err := inv.InvokableRun(context.Background(), args)
	require.NoError(t, err)
	return out
}

func TestCrawlFormToolOutputFeedsTheCrawlParser(t *testing.T) {
	out := invoke(t, All()[0], `{"topic":"lead generation"}`)
	bundle := parsers.ParseCrawlOptions(out)
	require.True(t, bundle.Valid())
	assert.Len(t, bundle.Websites, len(MockWebsites))
}

func TestKeywordFormToolOutputFeedsTheKeywordParser(t *testing.T) {
	out := invoke(t, All()[1], `{"campaign":"q3"}`)
	bundle := parsers.ParseKeywordOptions(out)
	require.True(t, bundle.Valid())
	assert.Len(t, bundle.Sources, len(MockKeywordSources))
}

func TestToolNamesMatchTheRegistry(t *testing.T) {
	registry := form.NewRegistry()
	for _, bt := range All() {
		info, err := bt.Info(context.Background())
		require.NoError(t, err)
		cfg, known := registry.Lookup(info.Name)
		assert.True(t, known, "tool %s must be registered", info.Name)
		assert.True(t, cfg.TriggerForm)
	}
}
