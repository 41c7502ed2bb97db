package model

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
	"github.com/yanqian/docsummarizer/pkg/metrics"
)

const (
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	defaultMaxTokens      = 1024
)

// AnthropicModel calls the Messages API.
type AnthropicModel struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewAnthropicModel builds a client. Retries are left to the guard.
func NewAnthropicModel(apiKey, baseURL, model string, temperature float64, maxTokens int) (*AnthropicModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic api key cannot be empty")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(baseURL); endpoint != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(endpoint, "/")+"/"))
	}
	return &AnthropicModel{
		client:      anthropic.NewClient(opts...),
		model:       model,
		temperature: temperature,
		maxTokens:   int64(maxTokens),
	}, nil
}

// Generate sends prompt as a single user message and joins the text blocks.
func (m *AnthropicModel) Generate(ctx context.Context, prompt string) (summarizer.Generation, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.model),
		MaxTokens: m.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if m.temperature > 0 {
		params.Temperature = anthropic.Float(m.temperature)
	}
	msg, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return summarizer.Generation{}, err
	}
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	input := int(msg.Usage.InputTokens)
	output := int(msg.Usage.OutputTokens)
	return summarizer.Generation{
		SummaryText: strings.TrimSpace(text.String()),
		Usage: metrics.TokenUsage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		},
	}, nil
}

var _ summarizer.Model = (*AnthropicModel)(nil)
