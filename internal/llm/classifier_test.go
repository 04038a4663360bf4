package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileorg/fileorg/internal/common"
	"github.com/fileorg/fileorg/internal/model"
	"github.com/fileorg/fileorg/internal/service"
)

// stubClient returns canned responses in order, then repeats the last one.
type stubClient struct {
	responses []string
	errs      []error
	calls     int
	lastUser  string
}

func (s *stubClient) Complete(_ context.Context, _ string, userPrompt string) (string, error) {
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	s.lastUser = userPrompt
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	return s.responses[idx], nil
}

var classifierCategories = []model.Category{
	{ID: "documents", Name: "Documents"},
	{ID: "images", Name: "Images"},
	{ID: "others", Name: "Others"},
}

func fastRetryClassifier(client Client) *Classifier {
	c := NewClassifierWithClient(client, DefaultPromptTemplates(), nil)
	c.retryOpts = service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond}
	return c
}

func TestClassify(t *testing.T) {
	client := &stubClient{responses: []string{`{"category": "Documents", "confidence": 0.9}`}}
	classifier := fastRetryClassifier(client)
	defer func() { _ = classifier.Close() }()

	result, err := classifier.Classify(context.Background(), model.FileDescriptor{
		Name:      "report.pdf",
		Extension: "pdf",
		FileType:  model.FileTypeDocument,
	}, classifierCategories)
	require.NoError(t, err)

	assert.Equal(t, "Documents", result.SuggestedCategory)
	assert.Equal(t, model.SourceLLM, result.Source)
	assert.Equal(t, 1, client.calls)
	assert.Contains(t, client.lastUser, "report.pdf")
	assert.Contains(t, client.lastUser, "Documents, Images, Others")
}

func TestClassifyRetriesParseFailures(t *testing.T) {
	client := &stubClient{responses: []string{
		"the model rambles without json",
		`{"category": "Images"}`,
	}}
	classifier := fastRetryClassifier(client)
	defer func() { _ = classifier.Close() }()

	result, err := classifier.Classify(context.Background(), model.FileDescriptor{
		Name: "photo.jpg", Extension: "jpg", FileType: model.FileTypeImage,
	}, classifierCategories)
	require.NoError(t, err)
	assert.Equal(t, "Images", result.SuggestedCategory)
	assert.Equal(t, 2, client.calls)
}

func TestClassifyRejectionNotRetried(t *testing.T) {
	client := &stubClient{
		responses: []string{""},
		errs:      []error{common.ErrModelRejected},
	}
	classifier := fastRetryClassifier(client)
	defer func() { _ = classifier.Close() }()

	_, err := classifier.Classify(context.Background(), model.FileDescriptor{
		Name: "x.pdf", Extension: "pdf",
	}, classifierCategories)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelRejected)
	assert.Equal(t, 1, client.calls)
}

func TestClassifyUnavailableRetried(t *testing.T) {
	client := &stubClient{
		responses: []string{"", `{"category": "Documents"}`},
		errs:      []error{common.ErrModelUnavailable, nil},
	}
	classifier := fastRetryClassifier(client)
	defer func() { _ = classifier.Close() }()

	result, err := classifier.Classify(context.Background(), model.FileDescriptor{
		Name: "x.pdf", Extension: "pdf",
	}, classifierCategories)
	require.NoError(t, err)
	assert.Equal(t, "Documents", result.SuggestedCategory)
	assert.Equal(t, 2, client.calls)
}

func TestBuildPromptVariants(t *testing.T) {
	t.Run("filename variant for unreadable path", func(t *testing.T) {
		c := NewClassifierWithClient(&stubClient{responses: []string{"{}"}}, DefaultPromptTemplates(), nil)
		prompt := c.buildPrompt(model.FileDescriptor{
			Name:     "ghost.pdf",
			Path:     "/nonexistent/ghost.pdf",
			FileType: model.FileTypeDocument,
		}, classifierCategories)

		assert.Contains(t, prompt, "file name")
		assert.Contains(t, prompt, "ghost.pdf")
		assert.NotContains(t, prompt, "{{")
	})

	t.Run("text content variant embeds file head", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("meeting minutes from tuesday"), 0o600))

		c := NewClassifierWithClient(&stubClient{responses: []string{"{}"}}, DefaultPromptTemplates(), nil)
		prompt := c.buildPrompt(model.FileDescriptor{
			Name:     "notes.txt",
			Path:     path,
			FileType: model.FileTypeDocument,
		}, classifierCategories)

		assert.Contains(t, prompt, "meeting minutes from tuesday")
	})

	t.Run("image variant requires vision support", func(t *testing.T) {
		templates := DefaultPromptTemplates()

		c := NewClassifierWithClient(&stubClient{responses: []string{"{}"}}, templates, nil)
		prompt := c.buildPrompt(model.FileDescriptor{Name: "pic.png", FileType: model.FileTypeImage}, classifierCategories)
		assert.NotContains(t, prompt, "image file")

		c.supportsVision = true
		prompt = c.buildPrompt(model.FileDescriptor{Name: "pic.png", FileType: model.FileTypeImage}, classifierCategories)
		assert.Contains(t, prompt, "image file")
	})
}

func TestReadContentHead(t *testing.T) {
	t.Run("short file returned whole", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

		head, ok := readContentHead(path, 1000)
		require.True(t, ok)
		assert.Equal(t, "hello", head)
	})

	t.Run("long file truncated on rune boundary", func(t *testing.T) {
		// Multibyte runes make byte-level truncation visible.
		content := strings.Repeat("é", 1500)
		path := filepath.Join(t.TempDir(), "b.txt")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		head, ok := readContentHead(path, 1000)
		require.True(t, ok)
		assert.True(t, utf8.ValidString(head))
		assert.Equal(t, 1000, utf8.RuneCountInString(head))
	})

	t.Run("binary file rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.bin")
		body := make([]byte, 64)
		for i := range body {
			body[i] = 0xFF
		}
		require.NoError(t, os.WriteFile(path, body, 0o600))

		_, ok := readContentHead(path, 1000)
		assert.False(t, ok)
	})

	t.Run("missing file rejected", func(t *testing.T) {
		_, ok := readContentHead("/no/such/file", 1000)
		assert.False(t, ok)
	})
}

func TestNewClassifierUnknownProvider(t *testing.T) {
	_, err := NewClassifier(Config{Provider: "carrier-pigeon"}, PromptTemplates{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestClassifyExhaustsRetries(t *testing.T) {
	client := &stubClient{
		responses: []string{""},
		errs:      []error{fmt.Errorf("%w: connection refused", common.ErrModelUnavailable)},
	}
	classifier := fastRetryClassifier(client)
	defer func() { _ = classifier.Close() }()

	_, err := classifier.Classify(context.Background(), model.FileDescriptor{
		Name: "x.pdf",
	}, classifierCategories)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.Equal(t, 3, client.calls)
}
