package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultOpenAIEndpoint is used when a provider is configured without one.
const DefaultOpenAIEndpoint = "https://api.openai.com/v1"

// OpenAIClient calls an OpenAI-compatible chat completions endpoint. It backs
// both summarization and the general-purpose translation fallback; any
// compatible gateway (OpenRouter, Groq, a local server) works.
type OpenAIClient struct {
	provider string
	model    string
	apiKey   string
	url      string
	http     *resty.Client
}

// NewOpenAIClient builds a client for one provider/credential/model triple.
// timeout bounds a single call; a timed-out call is an ordinary failure.
func NewOpenAIClient(provider, endpoint, apiKey, model string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		provider: strings.ToLower(strings.TrimSpace(provider)),
		model:    strings.TrimSpace(model),
		apiKey:   strings.TrimSpace(apiKey),
		url:      chatCompletionsURL(endpoint),
		http:     resty.New().SetTimeout(timeout),
	}
}

// Label returns "provider/model".
func (c *OpenAIClient) Label() string { return c.provider + "/" + c.model }

// KeyHint returns the masked credential, e.g. "…wxyz".
func (c *OpenAIClient) KeyHint() string { return maskKey(c.apiKey) }

// Model returns the configured model.
func (c *OpenAIClient) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat completion. Reasoning blocks are not stripped here;
// callers run the text through StripThinking.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, fmt.Errorf("%s: text is required", c.Label())
	}

	msgs := make([]chatMessage, 0, 2)
	if s := strings.TrimSpace(req.Instructions); s != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: s})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: text})

	var out chatResponse
	var apiErr apiErrorResponse
	r := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    msgs,
			MaxTokens:   req.MaxTokens,
			Temperature: 0.2,
		}).
		SetResult(&out).
		SetError(&apiErr)
	if c.apiKey != "" {
		r.SetAuthToken(c.apiKey)
	}

	resp, err := r.Post(c.url)
	if err != nil {
		return Result{}, fmt.Errorf("%s: send: %w", c.Label(), err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if strings.TrimSpace(msg) == "" {
			msg = resp.String()
		}
		return Result{}, &StatusError{Provider: c.Label(), Code: resp.StatusCode(), Message: msg}
	}
	if len(out.Choices) == 0 {
		return Result{}, fmt.Errorf("%s: no choices: %w", c.Label(), ErrEmptyResponse)
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return Result{}, fmt.Errorf("%s: %w", c.Label(), ErrEmptyResponse)
	}
	return Result{Text: content, Provider: c.Label()}, nil
}

// chatCompletionsURL normalizes a base endpoint to its /chat/completions URL.
func chatCompletionsURL(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultOpenAIEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" {
		return DefaultOpenAIEndpoint + "/chat/completions"
	}
	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
		parsed.Path = path
	case path == "":
		parsed.Path = "/v1/chat/completions"
	default:
		parsed.Path = path + "/chat/completions"
	}
	return parsed.String()
}
