package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlozanor/finanzas/internal/domain"
)

func TestFindLearned_TypeMatching(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	expense := s.AddCategory("Ocio", domain.Expense, "", "")
	income := s.AddCategory("Salario", domain.Income, "", "")

	require.NoError(t, s.InsertLearned(ctx, "NETFLIX DIGITAL", expense, 0.9))
	require.NoError(t, s.InsertLearned(ctx, "NETFLIX DIGITAL", income, 0.99))

	// Negative amount: only the expense-typed row may match, even though the
	// income row has higher confidence.
	got, err := s.FindLearned(ctx, "NETFLIX DIGITAL", decimal.NewFromFloat(-12.99))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, expense, got.CategoryID)

	// Positive amount matches the income row.
	got, err = s.FindLearned(ctx, "NETFLIX DIGITAL", decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, income, got.CategoryID)

	// Zero is treated as an expense.
	got, err = s.FindLearned(ctx, "NETFLIX DIGITAL", decimal.Zero)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, expense, got.CategoryID)

	// Unknown description matches nothing.
	got, err = s.FindLearned(ctx, "DESCONOCIDO", decimal.NewFromInt(-1))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindLearned_Ranking(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	ocio := s.AddCategory("Ocio", domain.Expense, "", "")
	vivienda := s.AddCategory("Vivienda", domain.Expense, "", "")

	require.NoError(t, s.InsertLearned(ctx, "PAGO", ocio, 0.6))
	require.NoError(t, s.InsertLearned(ctx, "PAGO", vivienda, 0.9))

	got, err := s.FindLearned(ctx, "PAGO", decimal.NewFromInt(-1))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, vivienda, got.CategoryID)
	assert.Equal(t, 0.9, got.Confidence)
}

func TestUpsertLearnedByDescription_Replaces(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	ocio := s.AddCategory("Ocio", domain.Expense, "", "")
	vivienda := s.AddCategory("Vivienda", domain.Expense, "", "")

	require.NoError(t, s.InsertLearned(ctx, "NETFLIX DIGITAL", ocio, 0.7))
	require.NoError(t, s.UpsertLearnedByDescription(ctx, "NETFLIX DIGITAL", ocio, 1.0))
	require.NoError(t, s.UpsertLearnedByDescription(ctx, "NETFLIX DIGITAL", vivienda, 1.0))

	// Exactly one row for the description, holding the latest correction.
	s.mu.RLock()
	var rows []domain.Learned
	for _, l := range s.learned {
		if l.Description == "NETFLIX DIGITAL" {
			rows = append(rows, l)
		}
	}
	s.mu.RUnlock()

	require.Len(t, rows, 1)
	assert.Equal(t, vivienda, rows[0].CategoryID)
	assert.Equal(t, 1.0, rows[0].Confidence)
}

func TestValidatedDescriptions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	cat := s.AddCategory("Ocio", domain.Expense, "", "")

	require.NoError(t, s.InsertLearned(ctx, "ALTA CONFIANZA", cat, 0.95))
	require.NoError(t, s.InsertLearned(ctx, "BAJA CONFIANZA", cat, 0.4))

	out, err := s.ValidatedDescriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ALTA CONFIANZA"}, out)
}

func TestUpdateCategoryByDescription(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddCategory("Ocio", domain.Expense, "", "")
	vivienda := s.AddCategory("Vivienda", domain.Expense, "", "")

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.InsertTransaction(ctx, &domain.Transaction{
			ID: id, Date: "2024-01-15", Description: "NETFLIX DIGITAL",
			Amount: decimal.NewFromInt(-12), Category: "Ocio",
		}))
	}
	require.NoError(t, s.InsertTransaction(ctx, &domain.Transaction{
		ID: "d", Date: "2024-01-15", Description: "OTRA COSA",
		Amount: decimal.NewFromInt(-5), Category: "Ocio",
	}))

	updated, err := s.UpdateCategoryByDescription(ctx, "NETFLIX DIGITAL", vivienda)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	tx, err := s.TransactionByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Vivienda", tx.Category)

	untouched, err := s.TransactionByID(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, "Ocio", untouched.Category)
}

func TestSeededStoreHasFallback(t *testing.T) {
	s := NewSeededStore()
	cat, err := s.CategoryByName(context.Background(), domain.FallbackCategoryName)
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, domain.Expense, cat.Type)
}

func TestImportRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	run := &domain.ImportRun{
		ID: "run-1", BankID: "eurocaja-rural", Filename: "mov.csv",
		Status: domain.ImportRunning, StartedAt: time.Now(),
	}
	require.NoError(t, s.StartImportRun(ctx, run))
	require.NoError(t, s.FinishImportRun(ctx, "run-1", domain.ImportSuccess, 10, 2, ""))

	s.mu.RLock()
	stored := s.imports["run-1"]
	s.mu.RUnlock()
	assert.Equal(t, domain.ImportSuccess, stored.Status)
	assert.Equal(t, 10, stored.Imported)
	assert.NotNil(t, stored.FinishedAt)
}
