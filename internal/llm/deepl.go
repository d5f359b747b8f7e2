package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultDeepLEndpoint is the free-tier API host.
const DefaultDeepLEndpoint = "https://api-free.deepl.com"

// DeepLClient calls a DeepL-compatible /v2/translate endpoint. It is the
// specialized first choice of the translation fallback chain.
type DeepLClient struct {
	name   string
	apiKey string
	http   *resty.Client
}

// NewDeepLClient builds a client for one credential. name is the provider
// group name used in labels.
func NewDeepLClient(name, endpoint, apiKey string, timeout time.Duration) *DeepLClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultDeepLEndpoint
	}
	if name = strings.ToLower(strings.TrimSpace(name)); name == "" {
		name = "deepl"
	}
	return &DeepLClient{
		name:   name,
		apiKey: strings.TrimSpace(apiKey),
		http:   resty.New().SetBaseURL(endpoint).SetTimeout(timeout),
	}
}

// Label returns "name(…last4)" so keys of one group can be told apart.
func (c *DeepLClient) Label() string { return c.name + "(" + c.KeyHint() + ")" }

// KeyHint returns the masked credential.
func (c *DeepLClient) KeyHint() string { return maskKey(c.apiKey) }

type deeplRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang,omitempty"`
	TargetLang string   `json:"target_lang"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

type deeplError struct {
	Message string `json:"message"`
}

// Complete translates req.Text from SourceLang to TargetLang.
func (c *DeepLClient) Complete(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Result{}, fmt.Errorf("%s: text is required", c.Label())
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		return Result{}, fmt.Errorf("%s: target language is required", c.Label())
	}

	var out deeplResponse
	var apiErr deeplError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "DeepL-Auth-Key "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(deeplRequest{
			Text:       []string{text},
			SourceLang: strings.ToUpper(req.SourceLang),
			TargetLang: strings.ToUpper(req.TargetLang),
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v2/translate")
	if err != nil {
		return Result{}, fmt.Errorf("%s: send: %w", c.Label(), err)
	}
	if resp.IsError() {
		msg := apiErr.Message
		if strings.TrimSpace(msg) == "" {
			msg = resp.String()
		}
		return Result{}, &StatusError{Provider: c.Label(), Code: resp.StatusCode(), Message: msg}
	}
	if len(out.Translations) == 0 || strings.TrimSpace(out.Translations[0].Text) == "" {
		return Result{}, fmt.Errorf("%s: %w", c.Label(), ErrEmptyResponse)
	}
	return Result{Text: strings.TrimSpace(out.Translations[0].Text), Provider: c.name}, nil
}
