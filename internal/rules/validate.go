package rules

import (
	"fmt"
	"regexp"

	"github.com/fileorg/fileorg/internal/common"
	"github.com/fileorg/fileorg/internal/model"
)

// ValidateCategories checks every rule in the category set before it is
// persisted. Returns ErrInvalidRule for rules that could never match: empty
// patterns, uncompilable regular expressions, unknown rule types.
func ValidateCategories(categories []model.Category) error {
	for _, cat := range categories {
		for _, rule := range cat.Rules {
			if rule.Pattern == "" {
				return fmt.Errorf("%w: category %q has a rule with an empty pattern", common.ErrInvalidRule, cat.ID)
			}

			switch rule.RuleType {
			case model.RuleNameRegex:
				if _, err := regexp.Compile(rule.Pattern); err != nil {
					return fmt.Errorf("%w: category %q pattern %q: %v", common.ErrInvalidRule, cat.ID, rule.Pattern, err)
				}
			case model.RuleExtension, model.RuleNameContains, model.RuleMimeType, model.RuleLlmKeyword:
			default:
				return fmt.Errorf("%w: category %q has unknown rule type %q", common.ErrInvalidRule, cat.ID, rule.RuleType)
			}
		}
	}
	return nil
}
