package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	configpkg "github.com/minhyannv/velocity-agent-go/pkg/config"
	loggerpkg "github.com/minhyannv/velocity-agent-go/pkg/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FallbackEndpoints are the completion routes tried after the preferred endpoint.
var FallbackEndpoints = []string{
	"/v1/chat/completions",
	"/api/v1/chat/completions",
	"/v1/completions",
	"/api/v1/completions",
	"/chat/completions",
	"/api/chat/completions",
}

// AuthStyle names how the API key is presented to the server.
type AuthStyle string

const (
	AuthBearer AuthStyle = "Authorization"
	AuthAPIKey AuthStyle = "x-api-key"
)

// AuthStyles lists the header shapes in the order they are tried.
var AuthStyles = []AuthStyle{AuthBearer, AuthAPIKey}

// Candidate is one endpoint/auth combination.
type Candidate struct {
	Endpoint string
	Auth     AuthStyle
}

// Client sends chat completions to the first endpoint/auth candidate that answers
// with a chat-completion shaped body.
type Client struct {
	config     configpkg.Config
	client     openai.Client
	candidates []Candidate
	logger     loggerpkg.Logger
	verbose    bool
}

// New builds a Client for cfg. It fails before any network activity when the
// API key is missing.
func New(cfg configpkg.Config, opts ...Option) (*Client, error) {
	cfg = configpkg.Normalize(cfg)
	if err := configpkg.Validate(cfg); err != nil {
		return nil, err
	}

	deps := clientDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	candidates := BuildCandidates(cfg.PreferredEndpoint)
	loggerpkg.Debug(cfg.Verbose, deps.logger, "chat client init", map[string]any{
		"base_url":   cfg.BaseURL,
		"model":      cfg.Model,
		"candidates": len(candidates),
		"timeout":    cfg.Timeout.String(),
	})

	return &Client{
		config:     cfg,
		client:     newOpenAIClient(cfg, deps),
		candidates: candidates,
		logger:     deps.logger,
		verbose:    cfg.Verbose,
	}, nil
}

func newOpenAIClient(cfg configpkg.Config, deps clientDeps) openai.Client {
	opts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if deps.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(deps.httpClient))
	}
	// Only Client.Post is used, so the client is built without
	// openai.DefaultClientOptions: OPENAI_* variables must not reach the host.
	return openai.Client{Options: opts}
}

// BuildCandidates returns the endpoint × auth cross product, endpoints in the
// outer loop. A non-empty preferred endpoint is tried first.
func BuildCandidates(preferred string) []Candidate {
	endpoints := make([]string, 0, len(FallbackEndpoints)+1)
	if preferred = strings.TrimSpace(preferred); preferred != "" {
		endpoints = append(endpoints, preferred)
	}
	endpoints = append(endpoints, FallbackEndpoints...)

	out := make([]Candidate, 0, len(endpoints)*len(AuthStyles))
	for _, ep := range endpoints {
		for _, auth := range AuthStyles {
			out = append(out, Candidate{Endpoint: ep, Auth: auth})
		}
	}
	return out
}

// Candidates returns a copy of the ordered candidate list.
func (c *Client) Candidates() []Candidate {
	return append([]Candidate(nil), c.candidates...)
}

// Complete sends the full history and returns the next assistant message.
// Candidates are tried strictly in order; the first success wins.
func (c *Client) Complete(ctx context.Context, messages []Message) (Message, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	params, err := c.newChatParams(messages)
	if err != nil {
		return Message{}, err
	}

	var lastErr error
	for i, cand := range c.candidates {
		msg, err := c.try(ctx, cand, params)
		if err != nil {
			lastErr = err
			loggerpkg.Debug(c.verbose, c.logger, "candidate failed", map[string]any{
				"attempt":  i + 1,
				"endpoint": cand.Endpoint,
				"auth":     string(cand.Auth),
				"error":    err.Error(),
			})
			continue
		}

		loggerpkg.Info(c.logger, "endpoint selected", map[string]any{
			"endpoint": cand.Endpoint,
			"auth":     string(cand.Auth),
		})
		return msg, nil
	}

	return Message{}, &ExhaustedError{Attempts: len(c.candidates), Last: lastErr}
}

func (c *Client) newChatParams(messages []Message) (openai.ChatCompletionNewParams, error) {
	converted, err := toOpenAIMessages(messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.config.Model),
		Messages:    converted,
		Temperature: openai.Float(c.config.Temperature),
	}, nil
}

// try issues exactly one request for cand.
func (c *Client) try(ctx context.Context, cand Candidate, params openai.ChatCompletionNewParams) (Message, error) {
	url := c.endpointURL(cand.Endpoint)

	var body []byte
	err := c.client.Post(ctx, strings.TrimLeft(cand.Endpoint, "/"), params, &body, authOptions(cand.Auth, c.config.APIKey)...)
	if err != nil {
		attemptErr := &AttemptError{Candidate: cand, URL: url, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			attemptErr.StatusCode = apiErr.StatusCode
			attemptErr.Body = errorBody(apiErr)
		}
		return Message{}, attemptErr
	}

	msg, err := parseCompletion(body)
	if err != nil {
		return Message{}, &AttemptError{Candidate: cand, URL: url, Err: err}
	}
	return msg, nil
}

func (c *Client) endpointURL(endpoint string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

func authOptions(style AuthStyle, apiKey string) []option.RequestOption {
	opts := []option.RequestOption{option.WithHeader("Content-Type", "application/json")}
	switch style {
	case AuthAPIKey:
		opts = append(opts,
			option.WithHeaderDel("Authorization"),
			option.WithHeader("x-api-key", apiKey),
		)
	default:
		opts = append(opts, option.WithHeader("Authorization", "Bearer "+apiKey))
	}
	return opts
}

func errorBody(apiErr *openai.Error) string {
	if apiErr.Response != nil && apiErr.Response.Body != nil {
		if b, err := io.ReadAll(apiErr.Response.Body); err == nil && len(b) > 0 {
			return strings.TrimSpace(string(b))
		}
	}
	return apiErr.Error()
}

type completionEnvelope struct {
	Choices []struct {
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// parseCompletion accepts only bodies shaped like a chat completion.
func parseCompletion(body []byte) (Message, error) {
	var env completionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Message{}, fmt.Errorf("decode response: %w", err)
	}
	if len(env.Choices) == 0 || env.Choices[0].Message == nil {
		return Message{}, ErrNoChoices
	}

	raw := env.Choices[0].Message
	msg := Message{Role: Role(raw.Role)}
	if msg.Role == "" {
		msg.Role = RoleAssistant
	}
	if raw.Content != nil {
		msg.Content = *raw.Content
	}
	return msg, nil
}
