package receipt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no Gemini model is configured.
const DefaultModel = "gemini-1.5-flash"

const extractionPrompt = `Extract fields from this fuel receipt image. Return ONLY a valid JSON object with these exact keys:
{
  "city": string | null,
  "state": string | null, // 2-letter code
  "date": string | null,  // YYYY-MM-DD
  "time": string | null,  // HH:MM 24h if available
  "fuelType": string | null,
  "amount": number | null,        // total gallons if only one fuel
  "cost": number | null,          // total cost if only one fuel
  "odometer": number | null,      // vehicle miles if present (printed or handwritten). Prefer the number written near the words "miles" or "odometer" if multiple numbers appear.
  "dieselGallons": number | null, // if Diesel present (line item)
  "dieselCost": number | null,
  "defGallons": number | null,    // if DEF present (line item)
  "defCost": number | null
}
Guidance:
- Many receipts have a handwritten odometer at the top like "594,454 miles". If found, parse the digits (ignore commas and the word miles).
- If both Diesel and DEF are present, populate the separate diesel/def fields. If only one fuel is present, use the generic amount and cost fields instead.
- Use numeric values only (no currency symbols). Use null for any field you cannot determine.`

// GeminiScanner sends receipt images to the Gemini generateContent API.
type GeminiScanner struct {
	client *genai.Client
	model  string
}

// GeminiOption adjusts the client configuration before the client is built.
type GeminiOption func(*genai.ClientConfig)

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) GeminiOption {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPClient = c
	}
}

// NewGeminiScanner creates a scanner authenticated with apiKey.
func NewGeminiScanner(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiScanner, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GeminiScanner{client: client, model: model}, nil
}

// Extract returns the raw text the model produced for the image.
func (g *GeminiScanner) Extract(ctx context.Context, imageBase64, mimeType string) (string, error) {
	image, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText(extractionPrompt),
			genai.NewPartFromBytes(image, mimeType),
		},
	}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generateContent: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
