package model

import (
	"context"
	"errors"
	"strings"

	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
	"github.com/yanqian/docsummarizer/internal/infra/llm/chatgpt"
	"github.com/yanqian/docsummarizer/pkg/metrics"
)

const systemPrompt = "You summarize documents faithfully and concisely. Answer with the summary only."

// ChatGPTModel adapts the chat completions client to the summarizer domain.
type ChatGPTModel struct {
	client      *chatgpt.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewChatGPTModel constructs the adapter.
func NewChatGPTModel(client *chatgpt.Client, model string, temperature float32, maxTokens int) *ChatGPTModel {
	return &ChatGPTModel{client: client, model: model, temperature: temperature, maxTokens: maxTokens}
}

// Generate sends prompt as a single user turn.
func (m *ChatGPTModel) Generate(ctx context.Context, prompt string) (summarizer.Generation, error) {
	resp, err := m.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       m.model,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
		Messages: []chatgpt.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return summarizer.Generation{}, err
	}
	if len(resp.Choices) == 0 {
		return summarizer.Generation{}, errors.New("chatgpt returned no choices")
	}
	return summarizer.Generation{
		SummaryText: strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage: metrics.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

var _ summarizer.Model = (*ChatGPTModel)(nil)
