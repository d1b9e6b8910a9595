package domain

import "github.com/shopspring/decimal"

// CategoryType tells whether a category collects income or expenses.
// The values match the taxonomy stored in the categories table.
type CategoryType string

const (
	Income  CategoryType = "ingreso"
	Expense CategoryType = "gasto"
)

// FallbackCategoryName is the catch-all category every taxonomy must carry.
const FallbackCategoryName = "Otros"

// Category is read-only reference data owned by storage. The categorization
// engine only ever resolves ids against it.
type Category struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Type  CategoryType `json:"type"`
	Color string       `json:"color,omitempty"`
	Icon  string       `json:"icon,omitempty"`
}

// TypeForAmount maps an amount's sign to the category type it must match.
// Zero amounts are treated as expenses.
func TypeForAmount(amount decimal.Decimal) CategoryType {
	if amount.Sign() > 0 {
		return Income
	}
	return Expense
}

// Source tells where a categorization decision came from.
type Source string

const (
	SourceLearned  Source = "learned"
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// CategorizationResult is what the engine hands back to callers.
// A nil CategoryID means "could not categorize"; callers map that to the
// uncategorized bucket.
type CategorizationResult struct {
	CategoryID *int64
	Confidence float64
	Source     Source
}
