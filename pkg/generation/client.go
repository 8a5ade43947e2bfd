package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const chatCompletionsPath = "/chat/completions"

// ClientConfig configures an OpenAI-compatible chat completions client.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client calls an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	http        *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		http:        httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	const op = "generation.Generate"

	body := chatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	if req.Model != "" {
		body.Model = req.Model
	}

	if req.Temperature > 0 {
		body.Temperature = req.Temperature
	}

	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}

	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}

	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})

	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}

		body.ResponseFormat = &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchemaFormat{Name: name, Schema: req.Schema},
		}
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return nil, NewServiceError(op, KindBadRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, buf)
	if err != nil {
		return nil, NewServiceError(op, KindBadRequest, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, ClassifyTransportError(op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, statusError(op, res)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(res.Body).Decode(&completion); err != nil {
		return nil, NewServiceError(op, KindDecode, err)
	}

	if len(completion.Choices) == 0 {
		return nil, NewServiceError(op, KindDecode, ErrEmptyResponse)
	}

	text := completion.Choices[0].Message.Content

	out := &Response{Text: text, Model: completion.Model}
	if req.Schema != nil {
		out.Structured = StructuredMap(text)
	}

	return out, nil
}

func statusError(op string, res *http.Response) *ServiceError {
	data, _ := io.ReadAll(io.LimitReader(res.Body, 64*1024))

	kind := KindFromStatus(res.StatusCode)
	message := strings.TrimSpace(string(data))

	var apiErr apiErrorResponse
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
		if apiErr.Error.Code == "insufficient_quota" {
			kind = KindQuota
		}
	}

	return &ServiceError{
		Op:         op,
		Kind:       kind,
		StatusCode: res.StatusCode,
		Message:    message,
		Err:        fmt.Errorf("unexpected status %d", res.StatusCode),
	}
}
