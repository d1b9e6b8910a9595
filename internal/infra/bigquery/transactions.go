package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/dlozanor/finanzas/internal/domain"
)

type transactionRow struct {
	ID          string     `bigquery:"transaction_id"`
	Date        civil.Date `bigquery:"fecha"`
	Time        string     `bigquery:"hora"`
	Description string     `bigquery:"concepto"`
	Amount      *big.Rat   `bigquery:"importe"`
	Balance     *big.Rat   `bigquery:"saldo"`
	Category    string     `bigquery:"categoria"`
	Bank        string     `bigquery:"banco"`
	Notes       string     `bigquery:"notas"`
	CreatedAt   time.Time  `bigquery:"created_at"`
}

func transactionToRow(tx *domain.Transaction) (*transactionRow, error) {
	date, err := civil.ParseDate(tx.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", tx.Date, err)
	}
	return &transactionRow{
		ID:          tx.ID,
		Date:        date,
		Time:        tx.Time,
		Description: tx.Description,
		Amount:      tx.Amount.Rat(),
		Balance:     tx.Balance.Rat(),
		Category:    tx.Category,
		Bank:        tx.Bank,
		Notes:       tx.Notes,
		CreatedAt:   tx.CreatedAt,
	}, nil
}

func (row *transactionRow) toDomain() *domain.Transaction {
	tx := &domain.Transaction{
		ID:          row.ID,
		Date:        row.Date.String(),
		Time:        row.Time,
		Description: row.Description,
		Category:    row.Category,
		Bank:        row.Bank,
		Notes:       row.Notes,
		CreatedAt:   row.CreatedAt,
	}
	if row.Amount != nil {
		tx.Amount = decimal.NewFromBigRat(row.Amount, 2)
	}
	if row.Balance != nil {
		tx.Balance = decimal.NewFromBigRat(row.Balance, 2)
	}
	return tx
}

func (r *Repo) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	row, err := transactionToRow(tx)
	if err != nil {
		return fmt.Errorf("InsertTransaction: %w", err)
	}

	inserter := r.client.Dataset(r.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertTransaction: inserting row: %w", err)
	}
	return nil
}

// UpdateCategoryByDescription moves every transaction with the exact
// description to the given category and reports the affected row count.
func (r *Repo) UpdateCategoryByDescription(ctx context.Context, description string, categoryID int64) (int64, error) {
	cat, err := r.CategoryByID(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("UpdateCategoryByDescription: %w", err)
	}
	if cat == nil {
		return 0, fmt.Errorf("UpdateCategoryByDescription: category %d not found", categoryID)
	}

	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET categoria = @categoria
		WHERE concepto = @concepto
	`, r.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "categoria", Value: cat.Name},
		{Name: "concepto", Value: description},
	}

	affected, err := r.runDML(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("UpdateCategoryByDescription: %w", err)
	}
	return affected, nil
}

func (r *Repo) TransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT transaction_id, fecha, hora, concepto, importe, saldo, categoria, banco, notas, created_at
		FROM %s
		WHERE transaction_id = @transaction_id
		LIMIT 1
	`, r.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: id},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("TransactionByID: query read: %w", err)
	}

	var row transactionRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("TransactionByID: iter next: %w", err)
	}

	return row.toDomain(), nil
}

// TransactionsByDateRange returns transactions between the ISO dates from
// and to inclusive, oldest first.
func (r *Repo) TransactionsByDateRange(ctx context.Context, from, to string) ([]*domain.Transaction, error) {
	fromDate, err := civil.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("TransactionsByDateRange: parsing from %q: %w", from, err)
	}
	toDate, err := civil.ParseDate(to)
	if err != nil {
		return nil, fmt.Errorf("TransactionsByDateRange: parsing to %q: %w", to, err)
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT transaction_id, fecha, hora, concepto, importe, saldo, categoria, banco, notas, created_at
		FROM %s
		WHERE fecha >= @from AND fecha <= @to
		ORDER BY fecha, hora, created_at
	`, r.table(transactionsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "from", Value: fromDate},
		{Name: "to", Value: toDate},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("TransactionsByDateRange: query read: %w", err)
	}

	var txs []*domain.Transaction
	for {
		var row transactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("TransactionsByDateRange: iter next: %w", err)
		}
		txs = append(txs, row.toDomain())
	}

	return txs, nil
}
