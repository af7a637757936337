package types

// AnalysisResult is the structured payload produced per deep-analysis call.
// Field names match what the mobile client reads.
type AnalysisResult struct {
	TechnicalScore  float64  `json:"technical_score"`
	Summary         string   `json:"summary"`
	DetailedFlaws   []string `json:"detailed_flaws"`
	EquipmentAdvice string   `json:"equipment_advice"`
}

// FallbackAnalysisResult is returned whenever the model's raw output cannot
// be parsed. Deterministic so the client always has something to render.
func FallbackAnalysisResult() AnalysisResult {
	return AnalysisResult{
		TechnicalScore:  0,
		Summary:         "Could not parse analysis.",
		DetailedFlaws:   []string{"Analysis error - unable to process video feedback"},
		EquipmentAdvice: "N/A",
	}
}
