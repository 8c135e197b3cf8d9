package vision

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ritogk/roadscan/internal/models"
)

// ParseMeasurement extracts a road measurement from the model's answer text.
// It first looks for a JSON object (the prompt requests JSON); when none can
// be decoded it falls back to scanning labeled lines. A field that cannot be
// located stays nil, and the record is always returned: partial results are
// valid and malformed input never produces an error.
func ParseMeasurement(answer string) models.Measurement {
	if raw, ok := extractJSON(answer); ok {
		if m, ok := parseStructured(raw); ok {
			return m
		}
	}

	return parseLoose(answer)
}

// rawMeasurement tolerates numbers the model writes with a decimal point
// where an integer is expected.
type rawMeasurement struct {
	Lanes          *float64 `json:"lanes"`
	LaneWidth      *float64 `json:"lane_width"`
	CenterLine     *bool    `json:"center_line"`
	ShoulderLeft   *float64 `json:"shoulder_left"`
	ShoulderRight  *float64 `json:"shoulder_right"`
	GuardrailLeft  *bool    `json:"guardrail_left"`
	GuardrailRight *bool    `json:"guardrail_right"`
}

func parseStructured(raw string) (models.Measurement, bool) {
	var decoded rawMeasurement
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return models.Measurement{}, false
	}

	var m models.Measurement
	if decoded.Lanes != nil {
		lanes := int(*decoded.Lanes)
		m.Lanes = &lanes
	}
	m.LaneWidth = decoded.LaneWidth
	m.CenterLine = decoded.CenterLine
	m.ShoulderLeft = decoded.ShoulderLeft
	m.ShoulderRight = decoded.ShoulderRight
	m.GuardrailLeft = decoded.GuardrailLeft
	m.GuardrailRight = decoded.GuardrailRight

	return m, true
}

// extractJSON returns the first balanced top-level object in the text.
// Code fences and surrounding prose are ignored.
func extractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// skip structural characters inside strings
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// looseLabels maps each measurement field to the labels the model has been
// observed to use in non-JSON answers.
var looseLabels = map[string][]string{
	"lanes":           {"lanes", "車線数"},
	"lane_width":      {"lane_width", "車線幅", "1車線の幅"},
	"center_line":     {"center_line", "センターライン"},
	"shoulder_left":   {"shoulder_left", "左側の路肩"},
	"shoulder_right":  {"shoulder_right", "右側の路肩"},
	"guardrail_left":  {"guardrail_left", "左側のガードレール"},
	"guardrail_right": {"guardrail_right", "右側のガードレール"},
}

func parseLoose(answer string) models.Measurement {
	var m models.Measurement

	for _, line := range strings.Split(answer, "\n") {
		field, value, ok := matchLabeledLine(line)
		if !ok {
			continue
		}

		switch field {
		case "lanes":
			if f, ok := parseNumber(value); ok && m.Lanes == nil {
				lanes := int(f)
				m.Lanes = &lanes
			}
		case "lane_width":
			if f, ok := parseNumber(value); ok && m.LaneWidth == nil {
				m.LaneWidth = &f
			}
		case "center_line":
			if b, ok := parseBool(value); ok && m.CenterLine == nil {
				m.CenterLine = &b
			}
		case "shoulder_left":
			if f, ok := parseNumber(value); ok && m.ShoulderLeft == nil {
				m.ShoulderLeft = &f
			}
		case "shoulder_right":
			if f, ok := parseNumber(value); ok && m.ShoulderRight == nil {
				m.ShoulderRight = &f
			}
		case "guardrail_left":
			if b, ok := parseBool(value); ok && m.GuardrailLeft == nil {
				m.GuardrailLeft = &b
			}
		case "guardrail_right":
			if b, ok := parseBool(value); ok && m.GuardrailRight == nil {
				m.GuardrailRight = &b
			}
		}
	}

	return m
}

// matchLabeledLine recognizes lines of the form "<label>: <value>", with an
// optional list bullet and either ASCII or full-width delimiter.
func matchLabeledLine(line string) (field, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "-*・ \t")

	for fieldName, labels := range looseLabels {
		for _, label := range labels {
			if !strings.HasPrefix(trimmed, label) {
				continue
			}
			rest := trimmed[len(label):]
			rest = strings.TrimLeft(rest, " \t")
			if rest == "" || (rest[0] != ':' && !strings.HasPrefix(rest, "：")) {
				continue
			}
			rest = strings.TrimPrefix(rest, ":")
			rest = strings.TrimPrefix(rest, "：")
			return fieldName, strings.TrimSpace(rest), true
		}
	}

	return "", "", false
}

func parseNumber(value string) (float64, bool) {
	if isExplicitNull(value) {
		return 0, false
	}
	match := numberPattern.FindString(value)
	if match == "" {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal([]byte(match), &f); err != nil {
		return 0, false
	}
	return f, true
}

func parseBool(value string) (bool, bool) {
	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "true") || strings.Contains(lower, "あり") || strings.Contains(lower, "有"):
		return true, true
	case strings.Contains(lower, "false") || strings.Contains(lower, "なし") || strings.Contains(lower, "無"):
		return false, true
	}
	return false, false
}

func isExplicitNull(value string) bool {
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "null") || strings.HasPrefix(lower, "なし") || strings.HasPrefix(lower, "不明")
}
