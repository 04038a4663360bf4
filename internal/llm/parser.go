package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fileorg/fileorg/internal/common"
	"github.com/fileorg/fileorg/internal/model"
)

// parsedResponse mirrors the JSON object the prompts instruct the model to
// return.
type parsedResponse struct {
	Category   string   `json:"category"`
	NewName    string   `json:"new_name,omitempty"`
	Reasoning  string   `json:"reasoning,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// extractJSON pulls the first {...} object out of a model reply, tolerating
// commentary or markdown fences around it.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

// parseClassification maps a raw model reply onto a ClassificationResult.
// The returned category name is matched case-insensitively against the known
// names; an unmatched name yields an empty suggestion at confidence 0 so the
// caller can fall back to a default bucket.
func parseClassification(content, filePath string, categories []model.Category) (model.ClassificationResult, error) {
	var parsed parsedResponse
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: %v", common.ErrParse, err)
	}
	if parsed.Category == "" {
		return model.ClassificationResult{}, fmt.Errorf("%w: no category in response", common.ErrParse)
	}

	confidence := 0.8
	if parsed.Confidence != nil {
		confidence = *parsed.Confidence
	}
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	result := model.ClassificationResult{
		FilePath:      filePath,
		SuggestedName: parsed.NewName,
		Reasoning:     parsed.Reasoning,
		Source:        model.SourceLLM,
		Confidence:    confidence,
	}

	for _, cat := range categories {
		if strings.EqualFold(cat.Name, parsed.Category) || strings.EqualFold(cat.ID, parsed.Category) {
			result.SuggestedCategory = cat.Name
			return result, nil
		}
	}

	// Unknown category name: not an error, just an unusable suggestion.
	result.SuggestedCategory = ""
	result.Confidence = 0
	result.Reasoning = fmt.Sprintf("model suggested unknown category %q", parsed.Category)
	return result, nil
}
