// Package rules implements deterministic category matching for file
// descriptors. LLM-backed classification is layered on top by the engine;
// the matcher itself never performs network calls.
package rules

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/fileorg/fileorg/internal/common"
	"github.com/fileorg/fileorg/internal/model"
)

// Matcher evaluates category rules against file descriptors.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher creates a rule matcher. A nil logger falls back to the default.
func NewMatcher(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{logger: logger}
}

// Match evaluates each category's rules in ascending priority order and
// returns the first category with a matching rule. The second return is true
// when no rule matched but at least one llmKeyword rule was seen, signaling
// that the caller should consult the LLM classifier.
func (m *Matcher) Match(descriptor model.FileDescriptor, categories []model.Category) (*model.Category, bool) {
	deferred := false

	for i := range categories {
		cat := &categories[i]
		for _, rule := range sortedRules(cat.Rules) {
			switch rule.RuleType {
			case model.RuleLlmKeyword:
				deferred = true
			default:
				if m.ruleMatches(rule, descriptor) {
					return cat, false
				}
			}
		}
	}

	return nil, deferred
}

func (m *Matcher) ruleMatches(rule model.CategoryRule, descriptor model.FileDescriptor) bool {
	switch rule.RuleType {
	case model.RuleExtension:
		return matchExtension(rule.Pattern, descriptor.Extension)
	case model.RuleNameContains:
		return strings.Contains(strings.ToLower(descriptor.Name), strings.ToLower(rule.Pattern))
	case model.RuleNameRegex:
		matched, err := common.MatchRegex(rule.Pattern, descriptor.Name)
		if err != nil {
			// A malformed pattern is a rule-level failure, not a caller error.
			m.logger.Warn("skipping invalid regex rule",
				"pattern", rule.Pattern,
				"file", descriptor.Name,
				"error", err)
			return false
		}
		return matched
	case model.RuleMimeType:
		mt := DetectMimeType(descriptor.Path, descriptor.Extension)
		return mt != "" && strings.EqualFold(mt, rule.Pattern)
	default:
		return false
	}
}

// matchExtension compares case-insensitively; the pattern may omit the
// leading dot and may be a comma-separated list.
func matchExtension(pattern, extension string) bool {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	if ext == "" {
		return false
	}
	for _, candidate := range strings.Split(pattern, ",") {
		candidate = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(candidate), "."))
		if candidate != "" && candidate == ext {
			return true
		}
	}
	return false
}

func sortedRules(in []model.CategoryRule) []model.CategoryRule {
	out := make([]model.CategoryRule, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}
