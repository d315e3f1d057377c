// Package hf is a thin client for the Hugging Face Inference API. It serves
// the two upstream capabilities the signal pipelines depend on: named-entity
// recognition over raw text and image classification over raw bytes. Both
// require a bearer credential; a client constructed without one reports
// itself unconfigured so callers can route to their fallback path.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api-inference.huggingface.co"

// Client calls hosted inference models over HTTP.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// New creates a client with the given bearer token. An empty token yields a
// valid but unconfigured client.
func New(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewWithBaseURL creates a client against a non-default endpoint. For tests
// and self-hosted inference deployments.
func NewWithBaseURL(token, baseURL string) *Client {
	c := New(token)
	c.baseURL = baseURL
	return c
}

// Configured reports whether a credential is present. Absence is a routing
// signal, not an error.
func (c *Client) Configured() bool {
	return c.token != ""
}

// Entity is one span returned by a token-classification model, ordered as
// returned by the model.
type Entity struct {
	Group string  `json:"entity_group"`
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Label is one class returned by an image-classification model, highest
// confidence first.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// TokenClassification runs the named-entity model over text and returns the
// recognized entity spans.
func (c *Client) TokenClassification(ctx context.Context, model, text string) ([]Entity, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	raw, err := c.post(ctx, model, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var entities []Entity
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return entities, nil
}

// ImageClassification runs the image model over raw image bytes and returns
// the ranked labels.
func (c *Client) ImageClassification(ctx context.Context, model string, image []byte) ([]Label, error) {
	raw, err := c.post(ctx, model, "application/octet-stream", bytes.NewReader(image))
	if err != nil {
		return nil, err
	}

	var labels []Label
	if err := json.Unmarshal(raw, &labels); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return labels, nil
}

func (c *Client) post(ctx context.Context, model, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/models/"+model, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference api error %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
