package nlu

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/vngglass/orderchat/internal/conversation"
	logx "github.com/vngglass/orderchat/pkg/logger"
)

//go:embed template/intent_prompt.txt
var intentPromptTemplate string

// GeminiClassifier labels inbound messages with one of the closed intent
// set using a Gemini chat model. It is the primary stage of the resolver;
// any failure here falls through to the local heuristics, so errors are
// returned rather than retried.
type GeminiClassifier struct {
	chatModel einomodel.BaseChatModel
	template  prompt.ChatTemplate
}

var _ conversation.Classifier = (*GeminiClassifier)(nil)

// NewGeminiClassifier builds the Gemini client and chat model from the
// config. Call only when cfg.Enabled().
func NewGeminiClassifier(ctx context.Context, cfg Config) (*GeminiClassifier, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating intent model")
		return nil, fmt.Errorf("error creating intent model: %w", err)
	}

	return newWithModel(chatModel), nil
}

// newWithModel wires the classifier around an already constructed chat
// model. Tests inject a stub model here.
func newWithModel(chatModel einomodel.BaseChatModel) *GeminiClassifier {
	return &GeminiClassifier{
		chatModel: chatModel,
		template: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage(intentPromptTemplate),
		),
	}
}

// Classify renders the intent prompt and asks the model for a single label.
// A label outside the closed set is an error so the caller falls back to
// the heuristics instead of acting on a hallucinated intent.
func (c *GeminiClassifier) Classify(ctx context.Context, state conversation.State, text string) (conversation.Intent, error) {
	msgs, err := c.template.Format(ctx, map[string]any{
		"state":   state.String(),
		"message": text,
	})
	if err != nil {
		return conversation.IntentUnknown, fmt.Errorf("render intent prompt: %w", err)
	}

	out, err := c.chatModel.Generate(ctx, msgs)
	if err != nil {
		return conversation.IntentUnknown, fmt.Errorf("intent model generate: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(out.Content))
	intent, ok := conversation.ParseIntent(label)
	if !ok {
		return conversation.IntentUnknown, fmt.Errorf("intent model returned unknown label %q", label)
	}

	logx.Debug().Str("label", label).Str("state", state.String()).Msg("intent classified")
	return intent, nil
}
