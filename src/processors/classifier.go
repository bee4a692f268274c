package processors

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/extratodb/src/models"
)

// Rule assigns a category when its keyword occurs in the normalized
// description. Whatever text follows the first keyword occurrence becomes the
// category detail.
type Rule struct {
	Keyword  string
	Category string
}

// Classifier applies an ordered rule list to normalized descriptions.
// Rules are checked in order and the first match wins, so more specific
// keywords must come before keywords they may contain or co-occur with.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns the default rule set. RESGATE is checked before
// APLICACAO: redemption lines often mention the application they redeem from.
func NewClassifier() *Classifier {
	return &Classifier{rules: []Rule{
		{Keyword: "RESGATE", Category: "investment_redemption"},
		{Keyword: "APLICACAO", Category: "investment_contribution"},
	}}
}

// NewClassifierWithRules lets callers append categories (transfers, fees...)
// without modifying the default branches.
func NewClassifierWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify derives the movement type from the amount sign (zero counts as
// debit) and the category/detail from the first matching rule. Descriptions
// matching no rule stay uncategorized.
func (c *Classifier) Classify(normDesc string, amount decimal.Decimal) (category, detail *string, movementType string) {
	movementType = models.MovementDebit
	if amount.IsPositive() {
		movementType = models.MovementCredit
	}

	for _, r := range c.rules {
		idx := strings.Index(normDesc, r.Keyword)
		if idx < 0 {
			continue
		}
		cat := r.Category
		category = &cat
		if rest := strings.TrimSpace(normDesc[idx+len(r.Keyword):]); rest != "" {
			detail = &rest
		}
		break
	}
	return category, detail, movementType
}
