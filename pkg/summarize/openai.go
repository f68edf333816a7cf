package summarize

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const defaultSystemPrompt = "You summarize meeting transcripts. Reply with the summary only."

const personsPrompt = "List the full name of every person who attends or is mentioned in this meeting transcript. " +
	"Reply with one name per line and nothing else. Reply with NONE if there are no names."

// OpenAIBackend summarizes through an OpenAI-compatible chat completions
// API. It also answers PERSON queries so it can stand in for a named
// entity recognizer.
type OpenAIBackend struct {
	client oai.Client
	model  string
}

type openAIConfig struct {
	baseURL string
	timeout time.Duration
}

// OpenAIOption configures an OpenAIBackend.
type OpenAIOption func(*openAIConfig)

// WithBaseURL points the backend at another OpenAI-compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *openAIConfig) {
		c.timeout = d
	}
}

// NewOpenAIBackend creates a backend for model. Requests are never retried;
// a failed call falls back to the extractive summary instead.
func NewOpenAIBackend(apiKey, model string, opts ...OpenAIOption) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: api key must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("openai: model must not be empty")
	}

	cfg := &openAIConfig{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}

	return &OpenAIBackend{client: oai.NewClient(reqOpts...), model: model}, nil
}

// Model returns the configured model name.
func (b *OpenAIBackend) Model() string {
	return b.model
}

// Summarize implements Backend.
func (b *OpenAIBackend) Summarize(ctx context.Context, req Request) (string, error) {
	system := req.Prompt
	if system == "" {
		system = defaultSystemPrompt
	}
	params := b.params(system, req.Text)
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(req.MaxTokens))
	}
	if !req.Sample {
		params.Temperature = param.NewOpt(0.0)
	}
	return b.complete(ctx, params)
}

// Persons asks the model for the people named in text.
func (b *OpenAIBackend) Persons(ctx context.Context, text string) ([]string, error) {
	params := b.params(personsPrompt, text)
	params.Temperature = param.NewOpt(0.0)

	out, err := b.complete(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseNameList(out), nil
}

func (b *OpenAIBackend) params(system, user string) oai.ChatCompletionNewParams {
	return oai.ChatCompletionNewParams{
		Model: shared.ChatModel(b.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(user),
		},
	}
}

func (b *OpenAIBackend) complete(ctx context.Context, params oai.ChatCompletionNewParams) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// parseNameList reads one name per line, dropping list markers.
func parseNameList(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•0123456789.) "))
		if name == "" || strings.EqualFold(name, "none") {
			continue
		}
		names = append(names, name)
	}
	return names
}
