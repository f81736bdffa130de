package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
)

type AnthropicClient struct{ http *http.Client; apiKey string }

func NewAnthropicClient() *AnthropicClient { return &AnthropicClient{http: &http.Client{}, apiKey: os.Getenv("ANTHROPIC_API_KEY")} }
func (c *AnthropicClient) Name() string { return "anthropic" }

type anthropicMsgReq struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	System    string `json:"system,omitempty"`
	Messages  []struct{
		Role    string                   `json:"role"`
		Content []map[string]interface{} `json:"content"`
	} `json:"messages"`
}

type anthropicMsgResp struct { Content []struct{ Text string `json:"text"` } `json:"content"` }

func (c *AnthropicClient) Extract(ctx context.Context, req Request) (Metadata, error) {
	if c.apiKey == "" { return Metadata{}, errors.New("missing ANTHROPIC_API_KEY") }

	var content []map[string]interface{}
	if req.DocumentBase64 != "" {
		content = append(content, map[string]interface{}{
			"type": "document",
			"source": map[string]string{"type": "base64", "media_type": "application/pdf", "data": req.DocumentBase64},
		})
	}
	for _, img := range req.Images {
		content = append(content, map[string]interface{}{
			"type": "image",
			"source": map[string]string{"type": "base64", "media_type": img.MIME, "data": img.Base64},
		})
	}
	content = append(content, map[string]interface{}{"type": "text", "text": userPrompt(req.AllowedCategories)})

	payload := anthropicMsgReq{Model: req.Model, MaxTokens: 4096, System: systemPrompt}
	payload.Messages = []struct{
		Role    string                   `json:"role"`
		Content []map[string]interface{} `json:"content"`
	}{{Role: "user", Content: content}}

	body, _ := json.Marshal(payload)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil { return Metadata{}, err }
	defer resp.Body.Close()
	if resp.StatusCode == 429 { return Metadata{}, ErrRateLimited }
	if resp.StatusCode < 200 || resp.StatusCode >= 300 { return Metadata{}, fmt.Errorf("anthropic status %d", resp.StatusCode) }
	var r anthropicMsgResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil { return Metadata{}, err }
	if len(r.Content) == 0 { return Metadata{}, errors.New("no content") }
	return decodeMetadata(r.Content[0].Text)
}
