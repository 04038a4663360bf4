package model

// ClassificationSource indicates which subsystem produced a classification.
type ClassificationSource string

// Classification source constants.
const (
	SourceRule     ClassificationSource = "rule"
	SourceLLM      ClassificationSource = "llm"
	SourceFallback ClassificationSource = "fallback"
)

// ClassificationResult is the outcome of classifying a single file. A rule
// match reports confidence 1.0; an unresolvable file degrades to the default
// category at confidence 0 with Reasoning naming the cause.
type ClassificationResult struct {
	FilePath          string               `json:"file_path"`
	SuggestedCategory string               `json:"suggested_category"`
	SuggestedName     string               `json:"suggested_name,omitempty"`
	Reasoning         string               `json:"reasoning"`
	Source            ClassificationSource `json:"source"`
	Confidence        float64              `json:"confidence"`
}
