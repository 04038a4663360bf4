package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileorg/fileorg/internal/model"
)

func TestMatchExtension(t *testing.T) {
	matcher := NewMatcher(nil)

	categories := []model.Category{
		{
			ID:   "documents",
			Name: "Documents",
			Rules: []model.CategoryRule{
				{RuleType: model.RuleExtension, Pattern: "pdf,doc,docx", Priority: 1},
			},
		},
		{
			ID:   "images",
			Name: "Images",
			Rules: []model.CategoryRule{
				{RuleType: model.RuleExtension, Pattern: ".jpg, .png", Priority: 1},
			},
		},
	}

	tests := []struct {
		name      string
		extension string
		want      string
	}{
		{"exact match", "pdf", "Documents"},
		{"case insensitive", "PDF", "Documents"},
		{"comma list member", "docx", "Documents"},
		{"leading dot in pattern", "jpg", "Images"},
		{"space in pattern list", "png", "Images"},
		{"no match", "mp3", ""},
		{"empty extension", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, deferred := matcher.Match(model.FileDescriptor{
				Name:      "file." + tt.extension,
				Extension: tt.extension,
			}, categories)

			assert.False(t, deferred)
			if tt.want == "" {
				assert.Nil(t, cat)
			} else {
				require.NotNil(t, cat)
				assert.Equal(t, tt.want, cat.Name)
			}
		})
	}
}

func TestMatchNameContains(t *testing.T) {
	matcher := NewMatcher(nil)

	categories := []model.Category{
		{
			ID:   "invoices",
			Name: "Invoices",
			Rules: []model.CategoryRule{
				{RuleType: model.RuleNameContains, Pattern: "Invoice", Priority: 1},
			},
		},
	}

	cat, _ := matcher.Match(model.FileDescriptor{Name: "2024-invoice-march.pdf"}, categories)
	require.NotNil(t, cat)
	assert.Equal(t, "Invoices", cat.Name)

	cat, _ = matcher.Match(model.FileDescriptor{Name: "receipt.pdf"}, categories)
	assert.Nil(t, cat)
}

func TestMatchNameRegex(t *testing.T) {
	matcher := NewMatcher(nil)

	t.Run("valid pattern", func(t *testing.T) {
		categories := []model.Category{
			{
				ID:   "screenshots",
				Name: "Screenshots",
				Rules: []model.CategoryRule{
					{RuleType: model.RuleNameRegex, Pattern: `^Screenshot \d{4}`, Priority: 1},
				},
			},
		}

		cat, _ := matcher.Match(model.FileDescriptor{Name: "Screenshot 2024-01-01.png"}, categories)
		require.NotNil(t, cat)
		assert.Equal(t, "Screenshots", cat.Name)
	})

	t.Run("malformed pattern is skipped, not fatal", func(t *testing.T) {
		categories := []model.Category{
			{
				ID:   "broken",
				Name: "Broken",
				Rules: []model.CategoryRule{
					{RuleType: model.RuleNameRegex, Pattern: "([unclosed", Priority: 1},
					{RuleType: model.RuleExtension, Pattern: "txt", Priority: 2},
				},
			},
		}

		// Higher-priority malformed rule is skipped; the extension rule
		// still matches.
		cat, deferred := matcher.Match(model.FileDescriptor{Name: "notes.txt", Extension: "txt"}, categories)
		require.NotNil(t, cat)
		assert.Equal(t, "Broken", cat.Name)
		assert.False(t, deferred)
	})
}

func TestMatchMimeType(t *testing.T) {
	matcher := NewMatcher(nil)

	categories := []model.Category{
		{
			ID:   "pdfs",
			Name: "PDFs",
			Rules: []model.CategoryRule{
				{RuleType: model.RuleMimeType, Pattern: "application/pdf", Priority: 1},
			},
		},
	}

	cat, _ := matcher.Match(model.FileDescriptor{Name: "report.pdf", Extension: "pdf"}, categories)
	require.NotNil(t, cat)
	assert.Equal(t, "PDFs", cat.Name)

	// Unknown extension never matches a mimeType rule.
	cat, _ = matcher.Match(model.FileDescriptor{Name: "data.zzz", Extension: "zzz"}, categories)
	assert.Nil(t, cat)
}

func TestLlmKeywordAlwaysDefers(t *testing.T) {
	matcher := NewMatcher(nil)

	categories := []model.Category{
		{
			ID:   "contracts",
			Name: "Contracts",
			Rules: []model.CategoryRule{
				{RuleType: model.RuleLlmKeyword, Pattern: "legal agreement", Priority: 1},
			},
		},
		{
			ID:   "reports",
			Name: "Reports",
			Rules: []model.CategoryRule{
				{RuleType: model.RuleLlmKeyword, Pattern: "quarterly report", Priority: 1},
			},
		},
	}

	// Categories with only llmKeyword rules defer for every file.
	for _, name := range []string{"a.pdf", "b.jpg", "anything.bin"} {
		cat, deferred := matcher.Match(model.FileDescriptor{Name: name, Extension: "pdf"}, categories)
		assert.Nil(t, cat, "file %s", name)
		assert.True(t, deferred, "file %s", name)
	}
}

func TestMatchPriorityOrder(t *testing.T) {
	matcher := NewMatcher(nil)

	// A deferring llmKeyword rule at priority 1 does not shadow a concrete
	// match at priority 2 in the same category.
	categories := []model.Category{
		{
			ID:   "mixed",
			Name: "Mixed",
			Rules: []model.CategoryRule{
				{RuleType: model.RuleLlmKeyword, Pattern: "hint", Priority: 1},
				{RuleType: model.RuleExtension, Pattern: "pdf", Priority: 2},
			},
		},
	}

	cat, deferred := matcher.Match(model.FileDescriptor{Name: "report.pdf", Extension: "pdf"}, categories)
	require.NotNil(t, cat)
	assert.Equal(t, "Mixed", cat.Name)
	assert.False(t, deferred)
}

func TestMatchFirstCategoryWins(t *testing.T) {
	matcher := NewMatcher(nil)

	categories := []model.Category{
		{
			ID:   "first",
			Name: "First",
			Rules: []model.CategoryRule{
				{RuleType: model.RuleExtension, Pattern: "pdf", Priority: 1},
			},
		},
		{
			ID:   "second",
			Name: "Second",
			Rules: []model.CategoryRule{
				{RuleType: model.RuleExtension, Pattern: "pdf", Priority: 1},
			},
		},
	}

	cat, _ := matcher.Match(model.FileDescriptor{Name: "x.pdf", Extension: "pdf"}, categories)
	require.NotNil(t, cat)
	assert.Equal(t, "First", cat.Name)
}

func TestDetectMimeTypeStaticTable(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectMimeType("", "pdf"))
	assert.Equal(t, "image/jpeg", DetectMimeType("", ".JPG"))
	assert.Equal(t, "", DetectMimeType("", "nosuchext"))
}
