package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"ariavoice/core"
)

// Config holds the configuration for the OpenRouter chat-completion service.
type Config struct {
	APIKey      string
	BaseURL     string
	Referer     string
	Title       string
	Temperature float32
	MaxTokens   int
}

// DefaultConfig returns a Config tuned for short spoken replies.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://openrouter.ai/api/v1",
		Referer:     "https://aria-voice.local",
		Title:       "ARIA Voice",
		Temperature: 0.7,
		MaxTokens:   150,
	}
}

// OpenRouterLLMService implements the chat relay's LLMService against
// OpenRouter's OpenAI-compatible endpoint.
type OpenRouterLLMService struct {
	client *openai.Client
	config Config
	logger *core.Logger
}

// headerTransport injects the attribution headers OpenRouter expects on
// every request.
type headerTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("HTTP-Referer", t.referer)
	req.Header.Set("X-Title", t.title)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewOpenRouterLLMService creates the service. An empty API key is allowed
// at construction; requests will fail individually with an UpstreamError.
func NewOpenRouterLLMService(config Config, logger *core.Logger) *OpenRouterLLMService {
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Referer == "" {
		config.Referer = def.Referer
	}
	if config.Title == "" {
		config.Title = def.Title
	}
	if config.Temperature == 0 {
		config.Temperature = def.Temperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = def.MaxTokens
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	clientCfg := openai.DefaultConfig(config.APIKey)
	clientCfg.BaseURL = config.BaseURL
	clientCfg.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &headerTransport{
			referer: config.Referer,
			title:   config.Title,
		},
	}

	return &OpenRouterLLMService{
		client: openai.NewClientWithConfig(clientCfg),
		config: config,
		logger: logger,
	}
}

// Complete sends the message list to the given model and returns the raw
// assistant text.
func (s *OpenRouterLLMService) Complete(ctx context.Context, model string, messages []core.ChatMessage) (string, error) {
	if s.config.APIKey == "" {
		return "", &core.UpstreamError{Provider: "openrouter", Err: errors.New("API key not configured")}
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &core.UpstreamError{
				Provider: "openrouter",
				Status:   apiErr.HTTPStatusCode,
				Err:      errors.New(apiErr.Message),
			}
		}
		return "", &core.UpstreamError{Provider: "openrouter", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &core.UpstreamError{Provider: "openrouter", Err: errors.New("empty completion response")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
