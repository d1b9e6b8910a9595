package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/dlozanor/finanzas/internal/domain"
)

type learnedRow struct {
	Description string    `bigquery:"concepto"`
	CategoryID  int64     `bigquery:"category_id"`
	Confidence  float64   `bigquery:"confidence"`
	CreatedAt   time.Time `bigquery:"created_at"`
}

// FindLearned returns the best learned association whose category type
// matches the amount's sign. Ranking is highest confidence, then most
// recent.
func (r *Repo) FindLearned(ctx context.Context, description string, amount decimal.Decimal) (*domain.Learned, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT cc.concepto, cc.category_id, cc.confidence, cc.created_at
		FROM %s cc
		INNER JOIN %s c
		  ON cc.category_id = c.category_id
		WHERE cc.concepto = @concepto
		  AND c.tipo = @tipo
		ORDER BY cc.confidence DESC, cc.created_at DESC
		LIMIT 1
	`, r.table(learnedTable), r.table(categoriesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "concepto", Value: description},
		{Name: "tipo", Value: string(domain.TypeForAmount(amount))},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindLearned: query read: %w", err)
	}

	var row learnedRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindLearned: iter next: %w", err)
	}

	return &domain.Learned{
		Description: row.Description,
		CategoryID:  row.CategoryID,
		Confidence:  row.Confidence,
		CreatedAt:   row.CreatedAt,
	}, nil
}

func (r *Repo) InsertLearned(ctx context.Context, description string, categoryID int64, confidence float64) error {
	q := r.client.Query(fmt.Sprintf(`
		INSERT %s (concepto, category_id, confidence, created_at)
		VALUES (@concepto, @category_id, @confidence, @created_at)
	`, r.table(learnedTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "concepto", Value: description},
		{Name: "category_id", Value: categoryID},
		{Name: "confidence", Value: confidence},
		{Name: "created_at", Value: time.Now().UTC()},
	}

	if _, err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertLearned: %w", err)
	}
	return nil
}

// UpsertLearnedByDescription replaces every learned row for the description
// with a single fresh one. The delete and insert run as one script so the
// replacement is atomic.
func (r *Repo) UpsertLearnedByDescription(ctx context.Context, description string, categoryID int64, confidence float64) error {
	q := r.client.Query(fmt.Sprintf(`
		DELETE FROM %[1]s WHERE concepto = @concepto;
		INSERT %[1]s (concepto, category_id, confidence, created_at)
		VALUES (@concepto, @category_id, @confidence, @created_at);
	`, r.table(learnedTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "concepto", Value: description},
		{Name: "category_id", Value: categoryID},
		{Name: "confidence", Value: confidence},
		{Name: "created_at", Value: time.Now().UTC()},
	}

	if _, err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("UpsertLearnedByDescription: %w", err)
	}
	return nil
}

// ValidatedDescriptions lists the distinct descriptions learned with high
// confidence.
func (r *Repo) ValidatedDescriptions(ctx context.Context) ([]string, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT DISTINCT concepto
		FROM %s
		WHERE confidence >= 0.8
		ORDER BY concepto
	`, r.table(learnedTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ValidatedDescriptions: query read: %w", err)
	}

	var descriptions []string
	for {
		var row struct {
			Description string `bigquery:"concepto"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ValidatedDescriptions: iter next: %w", err)
		}
		descriptions = append(descriptions, row.Description)
	}

	return descriptions, nil
}
