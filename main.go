package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Formflow-core-poc-v1/server/internal/core"
	"github.com/Formflow-core-poc-v1/server/internal/form"
	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	"github.com/Formflow-core-poc-v1/server/internal/form/repo"
	"github.com/Formflow-core-poc-v1/server/internal/form/state"
	"github.com/Formflow-core-poc-v1/server/internal/form/tools"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
	pkgredis "github.com/Formflow-core-poc-v1/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the form orchestration
// demo, sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure; RedisURL empty means run fully in memory.
	RedisURL string `envconfig:"REDIS_URL"`

	Conversation model.ConversationConfig
}

func main() {
	fmt.Println("Form orchestration demo...")
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}

	// Conversation transport and blocked-flag mirror: Redis when configured,
	// in-memory otherwise.
	var (
		transport form.MessageSubmitter
		mirror    state.LockMirror
		memory    *repo.MemoryConversationTransport
	)
	if envCfg.RedisURL != "" {
		rcfg := pkgredis.Config{URL: envCfg.RedisURL}
		if err := envconfig.Process("REDIS", &rcfg); err != nil {
			log.Fatalf("Failed to process redis config: %v", err)
		}
		rdb, err := rcfg.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		fmt.Println("Connected to Redis successfully")
		transport = repo.NewRedisConversationTransport(rdb, ttl)
		mirror = repo.NewRedisBlockedFlag(rdb, ttl)
	} else {
		memory = repo.NewMemoryConversationTransport()
		transport = memory
	}

	orc := form.NewOrchestrator(
		state.NewStore(),
		state.NewLocks(mirror),
		form.NewRegistry(),
		transport,
		nil, // no tool backend in the demo; submissions synthesize without a status call
	)

	conversationID := "demo-" + uuid.NewString()[:8]
	messageID := uuid.NewString()

	// Drive the flow with a real tool invocation instead of canned output.
	crawlTool, ok := tools.All()[0].(tool.InvokableTool)
	if !ok {
		log.Fatal("crawl form tool is not invokable")
	}
	crawlOutput, err := crawlTool.InvokableRun(ctx, `{"topic":"lead generation"}`)
	if err != nil {
		log.Fatalf("Failed to run crawl form tool: %v", err)
	}

	steps := []struct {
		description string
		run         func() string
	}{
		{
			description: "crawl form trigger",
			run: func() string {
				rec, opened := orc.HandleToolCall(ctx, model.ToolCallEvent{
					ConversationID: conversationID,
					MessageID:      messageID,
					ToolName:       form.ToolRenderCrawlForm + model.ToolServerDelimiter + "leadgen",
					Output:         &crawlOutput,
				})
				if !opened {
					return "no form opened"
				}
				return fmt.Sprintf("opened=%v type=%s blocked=%v", opened, rec.FormType, orc.Locks().Blocked(conversationID))
			},
		},
		{
			description: "duplicate re-render is a no-op",
			run: func() string {
				_, opened := orc.HandleToolCall(ctx, model.ToolCallEvent{
					ConversationID: conversationID,
					MessageID:      messageID,
					ToolName:       form.ToolRenderCrawlForm + model.ToolServerDelimiter + "leadgen",
					Output:         &crawlOutput,
				})
				return fmt.Sprintf("re-surfaced pending form=%v", opened)
			},
		},
		{
			description: "submit with label resolution",
			run: func() string {
				id := form.ResolveRequestID(crawlOutput, conversationID, messageID, form.ToolRenderCrawlForm)
				if err := orc.Submit(ctx, conversationID, id, map[string]any{"website_id": "w1", "depth": 2}, nil); err != nil {
					return "submit failed: " + err.Error()
				}
				return fmt.Sprintf("submitted, blocked=%v", orc.Locks().Blocked(conversationID))
			},
		},
	}

	for i, step := range steps {
		fmt.Printf("\nStep %d: %s\n", i+1, step.description)
		fmt.Println(step.run())
	}

	if memory != nil {
		fmt.Println("\nSynthesized messages:")
		for _, msg := range memory.Messages(conversationID) {
			fmt.Println("  " + msg)
		}
	}

	fmt.Println("\nDemo completed.")
}
