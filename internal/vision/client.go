package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ritogk/roadscan/internal/models"
)

// MessagesBaseURL is the Anthropic Messages API endpoint.
const MessagesBaseURL = "https://api.anthropic.com/v1/messages"

const anthropicVersion = "2023-06-01"

// ErrUnauthorized is returned when the API rejects the configured key.
var ErrUnauthorized = errors.New("anthropic API unauthorized (invalid API key)")

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Pricing converts token counts into cost figures. Prices are USD per
// million tokens; JPYPerUSD is the exchange rate applied to the USD cost.
type Pricing struct {
	InputUSDPerMTok  float64
	OutputUSDPerMTok float64
	JPYPerUSD        float64
}

const tokensPerMillion = 1_000_000

// Cost computes the usage record for one call.
func (p Pricing) Cost(inputTokens, outputTokens int64) models.TokenUsage {
	costUSD := float64(inputTokens)/tokensPerMillion*p.InputUSDPerMTok +
		float64(outputTokens)/tokensPerMillion*p.OutputUSDPerMTok

	return models.TokenUsage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      costUSD,
		CostJPY:      costUSD * p.JPYPerUSD,
	}
}

// Analysis is the raw outcome of one inference call: the model's textual
// answer, its token cost, and the observed wall-clock latency. Interpreting
// the answer is the parser's job, not the client's.
type Analysis struct {
	Answer           string
	Usage            models.TokenUsage
	ProcessingTimeMs int64
}

// Client submits images with the fixed prompt to the Anthropic Messages API.
type Client struct {
	client    HTTPClient   // HTTP client for making requests
	baseURL   string       // Base URL for the Messages API
	apiKey    string       // Anthropic API key
	model     string       // Model identifier
	maxTokens int          // Maximum output size per call
	pricing   Pricing      // Token-to-cost conversion
	log       *slog.Logger // Logger for logging operations
}

// NewClient creates a Messages API client with the default HTTP client.
func NewClient(apiKey, model string, maxTokens int, pricing Pricing, log *slog.Logger) *Client {
	const timeout = 120

	return &Client{
		client: &http.Client{
			Timeout: timeout * time.Second,
		},
		baseURL:   MessagesBaseURL,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		pricing:   pricing,
		log:       log,
	}
}

// NewClientWithHTTP allows injecting a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewClientWithHTTP(client HTTPClient, apiKey, model string, maxTokens int, pricing Pricing, log *slog.Logger) *Client {
	return &Client{
		client:    client,
		baseURL:   MessagesBaseURL,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		pricing:   pricing,
		log:       log,
	}
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

// Analyze submits the image and the fixed prompt as a single user turn and
// returns the first text block of the response together with token usage and
// the measured latency. Transport and API errors propagate unmodified; the
// caller decides how a failed coordinate is handled.
func (c *Client) Analyze(ctx context.Context, image []byte, coord models.Coordinate) (*Analysis, error) {
	c.log.DebugContext(ctx, "Analyzing image", "location", coord.String(), "model", c.model)

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: "image/jpeg",
						Data:      base64.StdEncoding.EncodeToString(image),
					},
				},
				{
					Type: "text",
					Text: Prompt(),
				},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode messages request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", anthropicVersion)

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("failed to execute messages request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		c.log.ErrorContext(ctx, "Anthropic API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result messagesResponse
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode messages response: %w", err)
	}

	// The answer is the first text-typed content block; empty when none exists.
	var answer string
	for _, block := range result.Content {
		if block.Type == "text" {
			answer = block.Text
			break
		}
	}

	usage := c.pricing.Cost(result.Usage.InputTokens, result.Usage.OutputTokens)

	c.log.DebugContext(ctx, "Analysis finished",
		"location", coord.String(),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"elapsed_ms", elapsed.Milliseconds())

	return &Analysis{
		Answer:           answer,
		Usage:            usage,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}, nil
}
