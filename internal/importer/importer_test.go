package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlozanor/finanzas/internal/domain"
)

type mockEngine struct {
	CategorizeFunc func(ctx context.Context, description string, amount decimal.Decimal) domain.CategorizationResult
}

func (m *mockEngine) Categorize(ctx context.Context, description string, amount decimal.Decimal) domain.CategorizationResult {
	if m.CategorizeFunc != nil {
		return m.CategorizeFunc(ctx, description, amount)
	}
	id := int64(2)
	return domain.CategorizationResult{CategoryID: &id, Confidence: 0.9, Source: domain.SourceLearned}
}

type mockStore struct {
	InsertTransactionFunc func(ctx context.Context, tx *domain.Transaction) error

	inserted []*domain.Transaction
}

func (m *mockStore) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	if m.InsertTransactionFunc != nil {
		if err := m.InsertTransactionFunc(ctx, tx); err != nil {
			return err
		}
	}
	m.inserted = append(m.inserted, tx)
	return nil
}

func (m *mockStore) CategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	switch id {
	case 1:
		return &domain.Category{ID: 1, Name: "Nómina", Type: domain.Income}, nil
	case 2:
		return &domain.Category{ID: 2, Name: "Supermercado", Type: domain.Expense}, nil
	}
	return nil, nil
}

func (m *mockStore) CategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	if name == domain.FallbackCategoryName {
		return &domain.Category{ID: 3, Name: domain.FallbackCategoryName, Type: domain.Expense}, nil
	}
	return nil, nil
}

func draft(date, description, amount string) domain.Draft {
	return domain.Draft{
		Date:        date,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		Bank:        "eurocaja-rural",
	}
}

func TestImportBatch(t *testing.T) {
	store := &mockStore{}
	imp := New(&mockEngine{}, store, 0, zerolog.Nop())

	drafts := []domain.Draft{
		draft("2024-01-02", "COMPRA MERCADONA", "-24.15"),
		draft("2024-01-03", "NOMINA EMPRESA", "1500"),
		draft("2024-01-04", "", "-5"),
		draft("", "SIN FECHA", "-5"),
		draft("2024-01-05", "RECIBO LUZ", "-60.10"),
	}

	res := imp.ImportBatch(context.Background(), "Eurocaja Rural", drafts)

	assert.Equal(t, 3, res.Imported)
	assert.Len(t, res.Errors, 2)
	require.Len(t, store.inserted, 3)

	first := store.inserted[0]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Eurocaja Rural", first.Bank)
	assert.Equal(t, "Supermercado", first.Category)
	assert.Equal(t, "2024-01-02", first.Date)
}

func TestImportBatchInsertFailureContinues(t *testing.T) {
	calls := 0
	store := &mockStore{
		InsertTransactionFunc: func(ctx context.Context, tx *domain.Transaction) error {
			calls++
			if calls == 1 {
				return errors.New("insert failed")
			}
			return nil
		},
	}
	imp := New(&mockEngine{}, store, 0, zerolog.Nop())

	res := imp.ImportBatch(context.Background(), "Eurocaja Rural", []domain.Draft{
		draft("2024-01-02", "FALLA", "-1"),
		draft("2024-01-03", "PASA", "-2"),
	})

	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "row 1")
}

func TestImportBatchNilCategoryFallsBack(t *testing.T) {
	store := &mockStore{}
	eng := &mockEngine{
		CategorizeFunc: func(ctx context.Context, description string, amount decimal.Decimal) domain.CategorizationResult {
			return domain.CategorizationResult{Source: domain.SourceFallback}
		},
	}
	imp := New(eng, store, 0, zerolog.Nop())

	res := imp.ImportBatch(context.Background(), "Eurocaja Rural", []domain.Draft{
		draft("2024-01-02", "DESCONOCIDO", "-1"),
	})

	assert.Equal(t, 1, res.Imported)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, domain.FallbackCategoryName, store.inserted[0].Category)
}

func TestImportBatchCancellationKeepsCommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &mockStore{}
	eng := &mockEngine{
		CategorizeFunc: func(ctx context.Context, description string, amount decimal.Decimal) domain.CategorizationResult {
			if len(store.inserted) == 1 {
				cancel()
			}
			id := int64(2)
			return domain.CategorizationResult{CategoryID: &id, Source: domain.SourceLearned}
		},
	}
	imp := New(eng, store, 0, zerolog.Nop())

	res := imp.ImportBatch(ctx, "Eurocaja Rural", []domain.Draft{
		draft("2024-01-02", "UNO", "-1"),
		draft("2024-01-03", "DOS", "-2"),
		draft("2024-01-04", "TRES", "-3"),
	})

	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "cancelled")
}

func TestImportBatchThrottleSkipsLearned(t *testing.T) {
	store := &mockStore{}
	imp := New(&mockEngine{}, store, 500*time.Millisecond, zerolog.Nop())

	start := time.Now()
	res := imp.ImportBatch(context.Background(), "Eurocaja Rural", []domain.Draft{
		draft("2024-01-02", "UNO", "-1"),
		draft("2024-01-03", "DOS", "-2"),
		draft("2024-01-04", "TRES", "-3"),
	})

	assert.Equal(t, 3, res.Imported)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "learned hits must not be throttled")
}
