package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dukex/resumeflow/pkg/generation"
)

const moderationsPath = "/moderations"

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls an OpenAI-compatible /moderations endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		http:    httpClient,
	}
}

type moderationRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type moderationResult struct {
	Flagged    bool            `json:"flagged"`
	Categories map[string]bool `json:"categories"`
}

type moderationResponse struct {
	ID      string             `json:"id"`
	Results []moderationResult `json:"results"`
}

func (c *Client) Classify(ctx context.Context, text string) (Classification, error) {
	const op = "moderation.Classify"

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(moderationRequest{Model: c.model, Input: text}); err != nil {
		return Classification{}, generation.NewServiceError(op, generation.KindBadRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+moderationsPath, buf)
	if err != nil {
		return Classification{}, generation.NewServiceError(op, generation.KindBadRequest, err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return Classification{}, generation.ClassifyTransportError(op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(res.Body, 64*1024))

		return Classification{}, &generation.ServiceError{
			Op:         op,
			Kind:       generation.KindFromStatus(res.StatusCode),
			StatusCode: res.StatusCode,
			Message:    strings.TrimSpace(string(data)),
			Err:        fmt.Errorf("unexpected status %d", res.StatusCode),
		}
	}

	var mr moderationResponse
	if err := json.NewDecoder(res.Body).Decode(&mr); err != nil {
		return Classification{}, generation.NewServiceError(op, generation.KindDecode, err)
	}

	if len(mr.Results) == 0 {
		return Classification{}, generation.NewServiceError(op, generation.KindDecode, generation.ErrEmptyResponse)
	}

	result := mr.Results[0]
	out := Classification{Flagged: result.Flagged}

	for category, flagged := range result.Categories {
		if flagged {
			out.Categories = append(out.Categories, category)
		}
	}

	sort.Strings(out.Categories)

	return out, nil
}
