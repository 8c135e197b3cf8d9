package models

// Measurement holds the road features estimated from a single street-level image.
// Every field is a pointer: the model may be unable to determine a feature, and
// "not determinable" must stay distinguishable from a measured zero or false.
// Sides follow left-hand traffic convention as seen in the direction of travel.
type Measurement struct {
	Lanes          *int     `json:"lanes"`           // Number of lanes.
	LaneWidth      *float64 `json:"lane_width"`      // Width of a single lane, meters.
	CenterLine     *bool    `json:"center_line"`     // Whether a centerline is painted.
	ShoulderLeft   *float64 `json:"shoulder_left"`   // Left shoulder width, meters.
	ShoulderRight  *float64 `json:"shoulder_right"`  // Right shoulder width, meters.
	GuardrailLeft  *bool    `json:"guardrail_left"`  // Guardrail on the left side.
	GuardrailRight *bool    `json:"guardrail_right"` // Guardrail on the right side.
}

// Complete reports whether every field was extracted from the answer.
func (m Measurement) Complete() bool {
	return m.Lanes != nil && m.LaneWidth != nil && m.CenterLine != nil &&
		m.ShoulderLeft != nil && m.ShoulderRight != nil &&
		m.GuardrailLeft != nil && m.GuardrailRight != nil
}
