// Package importer turns parsed statement drafts into stored, categorized
// transactions.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dlozanor/finanzas/internal/domain"
)

// Engine categorizes a single transaction.
type Engine interface {
	Categorize(ctx context.Context, description string, amount decimal.Decimal) domain.CategorizationResult
}

// Store is the persistence surface the importer needs.
type Store interface {
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error
	CategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	CategoryByName(ctx context.Context, name string) (*domain.Category, error)
}

// Result summarizes one batch import.
type Result struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors,omitempty"`
}

// Importer runs batch imports row by row. Rows are committed as they go:
// a failure in one row never rolls back the previous ones.
type Importer struct {
	engine   Engine
	store    Store
	throttle time.Duration
	log      zerolog.Logger
}

func New(engine Engine, store Store, throttle time.Duration, log zerolog.Logger) *Importer {
	return &Importer{
		engine:   engine,
		store:    store,
		throttle: throttle,
		log:      log,
	}
}

// ImportBatch categorizes and stores every draft in order. Invalid rows are
// reported in Result.Errors and skipped. Cancellation stops the batch but
// keeps what was already committed.
func (i *Importer) ImportBatch(ctx context.Context, bank string, drafts []domain.Draft) *Result {
	res := &Result{}

	for n, d := range drafts {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: import cancelled: %v", n+1, err))
			return res
		}

		if d.Date == "" || d.Description == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: missing date or description", n+1))
			continue
		}

		cr := i.engine.Categorize(ctx, d.Description, d.Amount)
		category := i.resolveCategoryName(ctx, cr.CategoryID)

		tx := &domain.Transaction{
			ID:          uuid.NewString(),
			Date:        d.Date,
			Time:        d.Time,
			Description: d.Description,
			Amount:      d.Amount,
			Balance:     d.Balance,
			Category:    category,
			Bank:        bank,
			CreatedAt:   time.Now().UTC(),
		}

		if err := i.store.InsertTransaction(ctx, tx); err != nil {
			i.log.Error().Err(err).Str("description", d.Description).Msg("Inserting transaction failed")
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", n+1, err))
			continue
		}
		res.Imported++

		// Pace the remote classifier; learned hits never left the process,
		// so they don't count against the rate limit.
		if i.throttle > 0 && cr.Source != domain.SourceLearned && n < len(drafts)-1 {
			select {
			case <-ctx.Done():
			case <-time.After(i.throttle):
			}
		}
	}

	return res
}

// resolveCategoryName maps a category id to its display name, falling back
// to the catch-all name when the id is nil or unknown.
func (i *Importer) resolveCategoryName(ctx context.Context, id *int64) string {
	if id != nil {
		if cat, err := i.store.CategoryByID(ctx, *id); err == nil && cat != nil {
			return cat.Name
		}
	}
	if cat, err := i.store.CategoryByName(ctx, domain.FallbackCategoryName); err == nil && cat != nil {
		return cat.Name
	}
	return domain.FallbackCategoryName
}
