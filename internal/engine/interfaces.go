package engine

import (
	"context"

	"github.com/fileorg/fileorg/internal/model"
)

// Classifier is the LLM-backed classification capability the engine falls
// back to when deterministic rules are inconclusive.
type Classifier interface {
	Classify(ctx context.Context, descriptor model.FileDescriptor, categories []model.Category) (model.ClassificationResult, error)
}

// RuleMatcher evaluates the deterministic category rules for one descriptor.
// The second return signals that classification should defer to the LLM.
type RuleMatcher interface {
	Match(descriptor model.FileDescriptor, categories []model.Category) (*model.Category, bool)
}
