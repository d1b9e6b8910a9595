// Package categorize decides which category a transaction belongs to.
//
// The decision procedure is strictly ordered: learned lookup, then the AI
// classifier, then type-consistency validation, then the "Otros" fallback.
// Nothing in here throws past the engine boundary — every failure degrades
// to a best-effort assignment.
package categorize

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dlozanor/finanzas/internal/domain"
)

// Store is the slice of the persistence surface the engine needs.
type Store interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	FindLearned(ctx context.Context, description string, amount decimal.Decimal) (*domain.Learned, error)
	InsertLearned(ctx context.Context, description string, categoryID int64, confidence float64) error
	UpsertLearnedByDescription(ctx context.Context, description string, categoryID int64, confidence float64) error
	UpdateCategoryByDescription(ctx context.Context, description string, categoryID int64) (int64, error)
	CategoryByName(ctx context.Context, name string) (*domain.Category, error)
}

// Classification is the strict-JSON answer the remote classifier returns.
type Classification struct {
	CategoryID int64   `json:"category_id"`
	Confidence float64 `json:"confidence"`
}

// Classifier is the remote AI classification service.
type Classifier interface {
	Classify(ctx context.Context, description string, amount decimal.Decimal, categories []domain.Category) (*Classification, error)
}

// DefaultTimeout bounds a single remote classification call.
const DefaultTimeout = 8 * time.Second

// FallbackConfidence is assigned when an AI answer is discarded for type
// inconsistency.
const FallbackConfidence = 0.5

// Engine runs the categorization decision procedure.
type Engine struct {
	store      Store
	classifier Classifier
	timeout    time.Duration
	log        zerolog.Logger
}

func NewEngine(store Store, classifier Classifier, log zerolog.Logger) *Engine {
	return &Engine{
		store:      store,
		classifier: classifier,
		timeout:    DefaultTimeout,
		log:        log,
	}
}

// WithTimeout overrides the classification deadline; useful in tests.
func (e *Engine) WithTimeout(d time.Duration) *Engine {
	e.timeout = d
	return e
}

// Categorize assigns a category to a transaction description and amount.
// It never returns an error: when everything fails it resolves to the
// "Otros" category, or to a nil category id if even that is missing.
func (e *Engine) Categorize(ctx context.Context, description string, amount decimal.Decimal) domain.CategorizationResult {
	if description == "" {
		return e.catchAll(ctx)
	}

	// 1. Learned lookup. A hit short-circuits: the AI is never consulted.
	learned, err := e.store.FindLearned(ctx, description, amount)
	if err != nil {
		e.log.Warn().Err(err).Str("description", description).Msg("Learned lookup failed")
		return e.catchAll(ctx)
	}
	if learned != nil {
		id := learned.CategoryID
		return domain.CategorizationResult{
			CategoryID: &id,
			Confidence: learned.Confidence,
			Source:     domain.SourceLearned,
		}
	}

	categories, err := e.store.Categories(ctx)
	if err != nil || len(categories) == 0 {
		e.log.Warn().Err(err).Msg("Loading categories failed")
		return e.catchAll(ctx)
	}

	// 2. AI classification, bounded by the deadline. A timeout is treated
	// exactly like a service error; the remote call is simply abandoned.
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cls, err := e.classifier.Classify(cctx, description, amount, categories)
	if err != nil {
		e.log.Warn().Err(err).Str("description", description).Msg("AI classification failed")
		return e.catchAll(ctx)
	}

	// 3. Type-consistency validation. An unknown id or a category whose
	// type disagrees with the amount's sign discards the AI answer.
	cat := categoryByID(categories, cls.CategoryID)
	if cat == nil || cat.Type != domain.TypeForAmount(amount) {
		e.log.Info().
			Str("description", description).
			Int64("category_id", cls.CategoryID).
			Msg("AI category inconsistent with amount sign, using fallback")
		return fallbackResult(categories)
	}

	// 4. Remember the validated answer. Failing to persist is logged and
	// swallowed; the caller still gets the AI result.
	if err := e.store.InsertLearned(ctx, description, cls.CategoryID, cls.Confidence); err != nil {
		e.log.Warn().Err(err).Str("description", description).Msg("Saving learned categorization failed")
	}

	id := cls.CategoryID
	return domain.CategorizationResult{
		CategoryID: &id,
		Confidence: cls.Confidence,
		Source:     domain.SourceAI,
	}
}

// Correct is the explicit user-correction path: every transaction sharing
// the description moves to the new category, and the learned row for the
// description is replaced at confidence 1.0. Returns how many transactions
// were updated.
func (e *Engine) Correct(ctx context.Context, description string, categoryID int64) (int64, error) {
	updated, err := e.store.UpdateCategoryByDescription(ctx, description, categoryID)
	if err != nil {
		return 0, err
	}
	if err := e.store.UpsertLearnedByDescription(ctx, description, categoryID, 1.0); err != nil {
		return updated, err
	}
	return updated, nil
}

// catchAll is the last resort: the "Otros" category if it can be resolved,
// otherwise an explicit "could not categorize".
func (e *Engine) catchAll(ctx context.Context) domain.CategorizationResult {
	cat, err := e.store.CategoryByName(ctx, domain.FallbackCategoryName)
	if err != nil || cat == nil {
		return domain.CategorizationResult{Source: domain.SourceFallback}
	}
	id := cat.ID
	return domain.CategorizationResult{
		CategoryID: &id,
		Confidence: 0,
		Source:     domain.SourceFallback,
	}
}

func fallbackResult(categories []domain.Category) domain.CategorizationResult {
	for _, c := range categories {
		if c.Name == domain.FallbackCategoryName {
			id := c.ID
			return domain.CategorizationResult{
				CategoryID: &id,
				Confidence: FallbackConfidence,
				Source:     domain.SourceFallback,
			}
		}
	}
	return domain.CategorizationResult{
		Confidence: FallbackConfidence,
		Source:     domain.SourceFallback,
	}
}

func categoryByID(categories []domain.Category, id int64) *domain.Category {
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i]
		}
	}
	return nil
}
