package engine

import (
	"context"
	"sync"

	"github.com/fileorg/fileorg/internal/model"
)

// mockClassifier is a configurable test double for the LLM path.
type mockClassifier struct {
	err       error
	responses map[string]model.ClassificationResult
	calls     []string
	delay     chan struct{}
	mu        sync.Mutex
}

func newMockClassifier() *mockClassifier {
	return &mockClassifier{
		responses: make(map[string]model.ClassificationResult),
	}
}

func (m *mockClassifier) Classify(ctx context.Context, descriptor model.FileDescriptor, _ []model.Category) (model.ClassificationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, descriptor.Name)
	m.mu.Unlock()

	if m.delay != nil {
		select {
		case <-m.delay:
		case <-ctx.Done():
			return model.ClassificationResult{}, ctx.Err()
		}
	}

	if m.err != nil {
		return model.ClassificationResult{}, m.err
	}

	if result, ok := m.responses[descriptor.Name]; ok {
		result.FilePath = descriptor.Path
		return result, nil
	}

	return model.ClassificationResult{
		FilePath:          descriptor.Path,
		SuggestedCategory: "Others",
		Confidence:        0.5,
		Source:            model.SourceLLM,
	}, nil
}

func (m *mockClassifier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
