// Package gemini wraps the Google Gemini generateContent API behind a
// small prompt-in, text-out client.
package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	baseURL   = "https://generativelanguage.googleapis.com"
	model     = "gemini-3-flash-preview"
	apiPath   = "/v1beta/models/%s:generateContent"
	tempValue = 0.7
)

// SystemInstruction pins the assistant to the Uzhavar360 workflow domain.
const SystemInstruction = `
You are an AI assistant designed for an academic final-year project named Uzhavar360 — a digital agriculture management system.

The system has three roles:
1. Collector – full access to view, verify, edit, approve, and monitor all data.
2. Admin (Market Staff) – enters and updates farmer details, crop loads, sales, prices, and payments.
3. Farmer – receives receipts and notifications (managed by admin).

Core functionalities include Farmer profile management, Daily load entry, Sales recording, and a Centralized dashboard for analytics.

You must:
- Explain system features clearly in simple English.
- Assist in understanding workflows and role permissions.
- Stay strictly within the agriculture/market management domain.
- Avoid unnecessary technical complexity.

If a query is outside this project scope, respond with: "This request is outside the Uzhavar360 system domain."
`

// Client defines the interface for assistant text generation.
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type geminiClient struct {
	httpClient *resty.Client
	apiKey     string
}

// NewClient creates a configured Gemini client.
func NewClient(apiKey string) Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &geminiClient{httpClient: client, apiKey: apiKey}
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction content   `json:"system_instruction"`
	Contents          []content `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		SystemInstruction: content{Parts: []contentPart{{Text: SystemInstruction}}},
		Contents:          []content{{Parts: []contentPart{{Text: prompt}}}},
	}
	reqBody.GenerationConfig.Temperature = tempValue

	var respBody generateResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(fmt.Sprintf(apiPath, model))

	if err != nil {
		return "", fmt.Errorf("gemini api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini api error: %s", resp.String())
	}
	if len(respBody.Candidates) == 0 || len(respBody.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from assistant")
	}

	return respBody.Candidates[0].Content.Parts[0].Text, nil
}
