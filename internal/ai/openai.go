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

type OpenAIClient struct{
	http *http.Client
	apiKey string
}

func NewOpenAIClient() *OpenAIClient {
	return &OpenAIClient{http: &http.Client{}, apiKey: os.Getenv("OPENAI_API_KEY")}
}
func (c *OpenAIClient) Name() string { return "openai" }

type openAIMessage struct {
	Role    string                   `json:"role"`
	Content []map[string]interface{} `json:"content"`
}

type openAIChatReq struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type openAIChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Extract(ctx context.Context, req Request) (Metadata, error) {
	if c.apiKey == "" {
		return Metadata{}, errors.New("missing OPENAI_API_KEY")
	}

	messages := []openAIMessage{{
		Role: "system",
		Content: []map[string]interface{}{
			{"type": "text", "text": systemPrompt},
		},
	}}

	var userContent []map[string]interface{}
	if req.DocumentBase64 != "" {
		userContent = append(userContent, map[string]interface{}{
			"type": "file",
			"file": map[string]string{
				"filename":  "arrangement.pdf",
				"file_data": fmt.Sprintf("data:application/pdf;base64,%s", req.DocumentBase64),
			},
		})
	}
	for _, img := range req.Images {
		userContent = append(userContent, map[string]interface{}{
			"type":      "image_url",
			"image_url": map[string]string{"url": fmt.Sprintf("data:%s;base64,%s", img.MIME, img.Base64)},
		})
	}
	userContent = append(userContent, map[string]interface{}{
		"type": "text",
		"text": userPrompt(req.AllowedCategories),
	})
	messages = append(messages, openAIMessage{Role: "user", Content: userContent})

	payload := openAIChatReq{
		Model:          req.Model,
		Messages:       messages,
		Temperature:    0,
		MaxTokens:      4096,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	body, _ := json.Marshal(payload)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(body))
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		return Metadata{}, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Metadata{}, fmt.Errorf("openai status %d", resp.StatusCode)
	}

	var r openAIChatResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Metadata{}, err
	}
	if len(r.Choices) == 0 {
		return Metadata{}, errors.New("no choices")
	}
	return decodeMetadata(r.Choices[0].Message.Content)
}
