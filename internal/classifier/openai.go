package classifier

import (
	"context"
	"fmt"
	"math"

	"github.com/sashabaranov/go-openai"
)

// SystemMessage instructs the model to answer with a single label.
const SystemMessage = `You are an advanced assistant specialized in analyzing and detecting emotions in short text.
Your role is to identify the underlying emotion conveyed in each input and provide the most accurate emotional classification between: shame, sadness, joy, guilt, fear, disgust and anger`

// maxTokens caps the answer; one word is expected.
const maxTokens = 4

// UserMessage formats the text the visitor submitted into the model prompt.
func UserMessage(text string) string {
	return fmt.Sprintf("Text: %s\n\nWhat is the emotion expressed in this text?", text)
}

// OpenAIClassifier calls an OpenAI-compatible chat completions endpoint.
type OpenAIClassifier struct {
	client *openai.Client
}

// NewOpenAIClassifier builds a classifier. An empty baseURL targets the
// public OpenAI API.
func NewOpenAIClassifier(apiKey, baseURL string) *OpenAIClassifier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClassifier{client: openai.NewClientWithConfig(cfg)}
}

// Classify asks model for the emotion expressed in text.
func (c *OpenAIClassifier) Classify(ctx context.Context, systemInstructions, text, model string) (Emotion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstructions},
			{Role: openai.ChatMessageRoleUser, Content: UserMessage(text)},
		},
		// A zero temperature is dropped from the request body by go-openai.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return ParseEmotion(resp.Choices[0].Message.Content)
}
