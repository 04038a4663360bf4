// Package engine implements the core classification engine for categorizing
// files. Deterministic rules run first; files they cannot place are handed
// to the LLM classifier under a bounded concurrency cap, and anything that
// still cannot be placed lands in the default category.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fileorg/fileorg/internal/model"
)

// DefaultCategoryID is the bucket files fall into when neither rules nor the
// LLM can place them.
const DefaultCategoryID = "others"

// Config holds configuration options for the classification engine.
type Config struct {
	// MaxConcurrentLLMCalls bounds in-flight model requests per batch.
	MaxConcurrentLLMCalls int
	// LLMTimeout is the per-file deadline for one model call.
	LLMTimeout time.Duration
	// LLMEnabled gates the semantic fallback entirely.
	LLMEnabled bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentLLMCalls: 5,
		LLMTimeout:            30 * time.Second,
		LLMEnabled:            true,
	}
}

// ClassificationEngine orchestrates rule matching and LLM classification.
type ClassificationEngine struct {
	matcher    RuleMatcher
	classifier Classifier
	logger     *slog.Logger
	config     Config
}

// New creates a classification engine. classifier may be nil when the LLM
// path is disabled.
func New(matcher RuleMatcher, classifier Classifier, config Config, logger *slog.Logger) *ClassificationEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxConcurrentLLMCalls <= 0 {
		config.MaxConcurrentLLMCalls = DefaultConfig().MaxConcurrentLLMCalls
	}
	if config.LLMTimeout <= 0 {
		config.LLMTimeout = DefaultConfig().LLMTimeout
	}
	if classifier == nil {
		config.LLMEnabled = false
	}
	return &ClassificationEngine{
		matcher:    matcher,
		classifier: classifier,
		logger:     logger,
		config:     config,
	}
}

// ClassifyBatch classifies every descriptor against a snapshot of the
// category set, returning one result per input in input order. A single
// file's timeout or failure degrades that file to the default category and
// never aborts the rest of the batch.
func (e *ClassificationEngine) ClassifyBatch(ctx context.Context, descriptors []model.FileDescriptor, categories []model.Category) ([]model.ClassificationResult, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories configured")
	}

	results := make([]model.ClassificationResult, len(descriptors))

	// Phase one: deterministic rules, cheap and synchronous.
	type deferredFile struct {
		idx    int
		reason string
	}
	var deferred []deferredFile

	for i, descriptor := range descriptors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cat, deferToLLM := e.matcher.Match(descriptor, categories)
		if cat != nil {
			results[i] = model.ClassificationResult{
				FilePath:          descriptor.Path,
				SuggestedCategory: cat.Name,
				Confidence:        1.0,
				Source:            model.SourceRule,
				Reasoning:         fmt.Sprintf("matched rule in category %q", cat.Name),
			}
			continue
		}

		reason := "no rule matched"
		if deferToLLM {
			reason = "deferred by llmKeyword rule"
		}
		deferred = append(deferred, deferredFile{idx: i, reason: reason})
	}

	e.logger.Info("rule matching complete",
		"total", len(descriptors),
		"rule_matched", len(descriptors)-len(deferred),
		"deferred", len(deferred))

	if len(deferred) == 0 {
		return results, nil
	}

	if !e.config.LLMEnabled {
		for _, d := range deferred {
			results[d.idx] = e.fallbackResult(descriptors[d.idx], categories, d.reason+"; llm disabled")
		}
		return results, nil
	}

	// Phase two: LLM calls under a semaphore so one batch cannot exceed the
	// provider rate budget.
	sem := make(chan struct{}, e.config.MaxConcurrentLLMCalls)
	var wg sync.WaitGroup

	for _, d := range deferred {
		wg.Add(1)
		go func(idx int, reason string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = e.fallbackResult(descriptors[idx], categories, reason+"; canceled before llm call")
				return
			}

			callCtx, cancel := context.WithTimeout(ctx, e.config.LLMTimeout)
			defer cancel()

			result, err := e.classifier.Classify(callCtx, descriptors[idx], categories)
			if err != nil {
				e.logger.Warn("llm classification failed, falling back",
					"file", descriptors[idx].Name,
					"error", err)
				results[idx] = e.fallbackResult(descriptors[idx], categories, fmt.Sprintf("%s; llm failed: %v", reason, err))
				return
			}
			if result.SuggestedCategory == "" {
				results[idx] = e.fallbackResult(descriptors[idx], categories, reason+"; "+result.Reasoning)
				return
			}
			results[idx] = result
		}(d.idx, d.reason)
	}

	wg.Wait()
	return results, nil
}

// ClassifySingle classifies one descriptor.
func (e *ClassificationEngine) ClassifySingle(ctx context.Context, descriptor model.FileDescriptor, categories []model.Category) (model.ClassificationResult, error) {
	results, err := e.ClassifyBatch(ctx, []model.FileDescriptor{descriptor}, categories)
	if err != nil {
		return model.ClassificationResult{}, err
	}
	return results[0], nil
}

// fallbackResult places a file in the default category at confidence 0.
func (e *ClassificationEngine) fallbackResult(descriptor model.FileDescriptor, categories []model.Category, cause string) model.ClassificationResult {
	return model.ClassificationResult{
		FilePath:          descriptor.Path,
		SuggestedCategory: defaultCategory(categories).Name,
		Confidence:        0,
		Source:            model.SourceFallback,
		Reasoning:         cause,
	}
}

// defaultCategory picks the "others" bucket, falling back to the last
// category in the snapshot when none carries the well-known ID.
func defaultCategory(categories []model.Category) model.Category {
	for _, cat := range categories {
		if strings.EqualFold(cat.ID, DefaultCategoryID) {
			return cat
		}
	}
	return categories[len(categories)-1]
}
