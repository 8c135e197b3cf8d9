package models

import (
	"math"
	"time"
)

// TokenUsage accumulates token counts and cost figures across inference calls.
type TokenUsage struct {
	InputTokens  int64   `json:"input_tokens"`  // Tokens consumed by the request.
	OutputTokens int64   `json:"output_tokens"` // Tokens produced by the model.
	CostUSD      float64 `json:"cost_usd"`      // Cost in US dollars.
	CostJPY      float64 `json:"cost_jpy"`      // Cost in Japanese yen.
}

// Add returns the field-wise sum of two usages.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
		CostUSD:      u.CostUSD + other.CostUSD,
		CostJPY:      u.CostJPY + other.CostJPY,
	}
}

// Rounded returns a copy with costs rounded to the report precision:
// 6 decimal places for USD, 2 for JPY.
func (u TokenUsage) Rounded() TokenUsage {
	const (
		usdPrecision = 1e6
		jpyPrecision = 1e2
	)
	u.CostUSD = math.Round(u.CostUSD*usdPrecision) / usdPrecision
	u.CostJPY = math.Round(u.CostJPY*jpyPrecision) / jpyPrecision
	return u
}

// AnalysisResult is the outcome of one successfully processed coordinate.
type AnalysisResult struct {
	Coordinate       Coordinate  `json:"coordinate"`        // Location the image was taken at.
	Address          string      `json:"address,omitempty"` // Reverse-geocoded address, when enrichment is enabled.
	Heading          float64     `json:"heading"`           // Camera heading used for the image, degrees.
	Measurement      Measurement `json:"measurement"`       // Parsed road features.
	RawAnswer        string      `json:"raw_answer"`        // Unparsed model answer, kept for auditing.
	TokenUsage       TokenUsage  `json:"token_usage"`       // Usage of the inference call.
	ProcessingTimeMs int64       `json:"processing_time_ms"`
}

// Failure records a coordinate that produced no result, with the reason.
type Failure struct {
	Coordinate Coordinate `json:"coordinate"`
	Reason     string     `json:"reason"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// AnalysisReport is the full outcome of a batch run. It is assembled exactly
// once after the last coordinate and never mutated afterwards.
type AnalysisReport struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	TotalLocations  int              `json:"total_locations"`
	TotalTokenUsage TokenUsage       `json:"total_token_usage"`
	Results         []AnalysisResult `json:"results"`
	Failures        []Failure        `json:"failures,omitempty"`
}
