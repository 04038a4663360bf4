// Package llm implements semantic file classification backed by an external
// language model. It supports the OpenAI API (and compatible endpoints),
// Anthropic, and local Ollama servers behind a single Client interface.
package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fileorg/fileorg/internal/common"
	"github.com/fileorg/fileorg/internal/model"
	"github.com/fileorg/fileorg/internal/service"
)

// contentHeadRunes is how much file content the text-content prompt embeds.
// Truncation is on a rune boundary, never mid-multibyte-sequence.
const contentHeadRunes = 1000

// Config holds configuration for the LLM classifier.
type Config struct {
	Provider       string
	APIKey         string
	APIEndpoint    string
	Model          string
	RetryDelay     time.Duration
	MaxRetries     int
	RateLimit      int
	Temperature    float64
	MaxTokens      int
	SupportsVision bool
}

// PromptTemplates holds the three prompt variants selected by descriptor
// kind. Template variables {{filename}}, {{content}} and {{categories}} are
// substituted verbatim.
type PromptTemplates struct {
	Filename    string
	TextContent string
	Image       string
}

// DefaultPromptTemplates returns the built-in prompt set.
func DefaultPromptTemplates() PromptTemplates {
	return PromptTemplates{
		Filename: `Analyze the following file name and decide which category the file belongs to.
File name: {{filename}}
Available categories: {{categories}}
Respond with a JSON object: {"category": "<category name>", "new_name": "<optional improved file name>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}.
Return only the JSON object, nothing else.`,
		TextContent: `Analyze the following file content and decide which category the file belongs to.
File name: {{filename}}
File content (first 1000 characters):
{{content}}
Available categories: {{categories}}
Respond with a JSON object: {"category": "<category name>", "new_name": "<optional improved file name>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}.
Return only the JSON object, nothing else.`,
		Image: `Analyze this image file and decide which category it belongs to.
File name: {{filename}}
Available categories: {{categories}}
Respond with a JSON object: {"category": "<category name>", "new_name": "<optional improved file name>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}.
Return only the JSON object, nothing else.`,
	}
}

const systemPrompt = `You are a file classification assistant. Given file details, assign the file to exactly one of the provided categories. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON.`

// Classifier turns file descriptors into category suggestions via an
// external model.
type Classifier struct {
	client         Client
	logger         *slog.Logger
	rateLimiter    *rateLimiter
	templates      PromptTemplates
	retryOpts      service.RetryOptions
	supportsVision bool
}

// NewClassifier creates a new LLM-based classifier for the configured
// provider.
func NewClassifier(cfg Config, templates PromptTemplates, logger *slog.Logger) (*Classifier, error) {
	var client Client
	var err error

	switch strings.ToLower(cfg.Provider) {
	case "openai", "openai-compatible":
		client, err = newOpenAIClient(cfg)
	case "anthropic", "claude":
		client, err = newAnthropicClient(cfg)
	case "ollama":
		client, err = newOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	if templates.Filename == "" {
		templates = DefaultPromptTemplates()
	}

	return &Classifier{
		client:         client,
		logger:         logger,
		rateLimiter:    newRateLimiter(cfg.RateLimit),
		templates:      templates,
		retryOpts:      retryOpts,
		supportsVision: cfg.SupportsVision,
	}, nil
}

// NewClassifierWithClient wires an existing client, bypassing provider
// selection. Used by the engine tests and the connection probe.
func NewClassifierWithClient(client Client, templates PromptTemplates, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if templates.Filename == "" {
		templates = DefaultPromptTemplates()
	}
	return &Classifier{
		client:      client,
		logger:      logger,
		rateLimiter: newRateLimiter(0),
		templates:   templates,
		retryOpts:   service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second},
	}
}

// Classify suggests a category for a single file descriptor.
func (c *Classifier) Classify(ctx context.Context, descriptor model.FileDescriptor, categories []model.Category) (model.ClassificationResult, error) {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("rate limit error: %w", err)
	}

	prompt := c.buildPrompt(descriptor, categories)

	var result model.ClassificationResult
	err := common.WithRetry(ctx, func() error {
		response, err := c.client.Complete(ctx, systemPrompt, prompt)
		if err != nil {
			c.logger.Warn("classification attempt failed",
				"file", descriptor.Name,
				"error", err)
			return &common.RetryableError{Err: err, Retryable: common.IsRetryable(err)}
		}

		result, err = parseClassification(response, descriptor.Path, categories)
		if err != nil {
			c.logger.Warn("unparseable classification response",
				"file", descriptor.Name,
				"error", err)
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return model.ClassificationResult{}, fmt.Errorf("classification failed for %s: %w", descriptor.Name, err)
	}

	c.logger.Debug("file classified",
		"file", descriptor.Name,
		"category", result.SuggestedCategory,
		"confidence", result.Confidence)

	return result, nil
}

// Ping performs a round-trip classification of a probe file and returns a
// human-readable status message.
func (c *Classifier) Ping(ctx context.Context) (string, error) {
	probe := model.FileDescriptor{
		Name:      "test.txt",
		Extension: "txt",
		Size:      1024,
		FileType:  model.FileTypeDocument,
	}
	categories := []model.Category{
		{ID: "documents", Name: "Documents"},
		{ID: "others", Name: "Others"},
	}

	result, err := c.Classify(ctx, probe, categories)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Connection successful! Test result: %s (confidence: %.0f%%)",
		result.SuggestedCategory, result.Confidence*100), nil
}

// Close stops background goroutines and cleans up resources.
func (c *Classifier) Close() error {
	if c.rateLimiter != nil {
		c.rateLimiter.Close()
	}
	return nil
}

// buildPrompt selects a template by descriptor kind and substitutes the
// template variables. The image variant requires vision support; without it
// the filename variant is used.
func (c *Classifier) buildPrompt(descriptor model.FileDescriptor, categories []model.Category) string {
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}
	joined := strings.Join(names, ", ")

	template := c.templates.Filename
	content := ""

	switch {
	case descriptor.FileType == model.FileTypeImage && c.supportsVision:
		template = c.templates.Image
	case descriptor.FileType == model.FileTypeDocument || descriptor.FileType == model.FileTypeCode:
		if head, ok := readContentHead(descriptor.Path, contentHeadRunes); ok {
			template = c.templates.TextContent
			content = head
		}
	}

	prompt := strings.ReplaceAll(template, "{{filename}}", descriptor.Name)
	prompt = strings.ReplaceAll(prompt, "{{content}}", content)
	prompt = strings.ReplaceAll(prompt, "{{categories}}", joined)
	return prompt
}

// readContentHead reads up to maxRunes runes from the start of the file,
// never splitting a multibyte sequence. Returns false when the file cannot
// be read or does not look like text.
func readContentHead(path string, maxRunes int) (string, bool) {
	if path == "" {
		return "", false
	}
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	// utf8.UTFMax bytes per rune bounds how much we ever need.
	buf := make([]byte, maxRunes*utf8.UTFMax)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", false
	}
	buf = buf[:n]

	if !utf8.Valid(buf) {
		// Trailing bytes may be a clipped sequence; back off up to three
		// bytes before giving up on the file as binary.
		trimmed := buf
		for i := 0; i < utf8.UTFMax-1 && len(trimmed) > 0; i++ {
			if utf8.Valid(trimmed) {
				break
			}
			trimmed = trimmed[:len(trimmed)-1]
		}
		if !utf8.Valid(trimmed) {
			return "", false
		}
		buf = trimmed
	}

	runes := []rune(string(buf))
	if len(runes) > maxRunes {
		runes = runes[:maxRunes]
	}
	return string(runes), true
}
