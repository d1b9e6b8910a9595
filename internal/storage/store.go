// Package storage defines the persistence surface the core pipeline depends
// on. The core never issues queries itself; it only calls these operations,
// which lets tests and local runs substitute the in-memory implementation in
// storage/memory for the BigQuery-backed one in infra/bigquery.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dlozanor/finanzas/internal/domain"
)

// CategoryStore exposes the read-only category taxonomy.
type CategoryStore interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	CategoryByName(ctx context.Context, name string) (*domain.Category, error)
}

// LearnedStore persists description→category associations.
type LearnedStore interface {
	// FindLearned returns the best learned row for the description whose
	// category type matches the amount's sign: highest confidence first,
	// ties broken by most recent creation. Nil when nothing matches.
	FindLearned(ctx context.Context, description string, amount decimal.Decimal) (*domain.Learned, error)

	// InsertLearned appends a new learned row.
	InsertLearned(ctx context.Context, description string, categoryID int64, confidence float64) error

	// UpsertLearnedByDescription atomically replaces the learned row for a
	// description, or creates it. This is the user-correction path; it must
	// not append.
	UpsertLearnedByDescription(ctx context.Context, description string, categoryID int64, confidence float64) error

	// ValidatedDescriptions lists descriptions learned with confidence >= 0.8.
	ValidatedDescriptions(ctx context.Context) ([]string, error)
}

// TransactionStore persists categorized transactions.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx *domain.Transaction) error

	// UpdateCategoryByDescription re-categorizes every transaction sharing
	// the exact description and reports how many rows changed.
	UpdateCategoryByDescription(ctx context.Context, description string, categoryID int64) (int64, error)

	TransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	TransactionsByDateRange(ctx context.Context, from, to string) ([]*domain.Transaction, error)
}

// ImportRunStore tracks statement uploads moving through the pipeline.
type ImportRunStore interface {
	StartImportRun(ctx context.Context, run *domain.ImportRun) error
	FinishImportRun(ctx context.Context, id, status string, imported, skipped int, errMsg string) error
}

// Store is the full persistence surface.
type Store interface {
	CategoryStore
	LearnedStore
	TransactionStore
	ImportRunStore
}
