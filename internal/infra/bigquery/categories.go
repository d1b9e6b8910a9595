package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/dlozanor/finanzas/internal/domain"
)

type categoryRow struct {
	ID    int64  `bigquery:"category_id"`
	Name  string `bigquery:"name"`
	Type  string `bigquery:"tipo"`
	Color string `bigquery:"color"`
	Icon  string `bigquery:"icon"`
}

func (row categoryRow) toDomain() domain.Category {
	return domain.Category{
		ID:    row.ID,
		Name:  row.Name,
		Type:  domain.CategoryType(row.Type),
		Color: row.Color,
		Icon:  row.Icon,
	}
}

// Categories returns the whole taxonomy ordered by id.
func (r *Repo) Categories(ctx context.Context) ([]domain.Category, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT category_id, name, tipo, color, icon
		FROM %s
		ORDER BY category_id
	`, r.table(categoriesTable)))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("Categories: query read: %w", err)
	}

	var categories []domain.Category
	for {
		var row categoryRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Categories: iter next: %w", err)
		}
		categories = append(categories, row.toDomain())
	}

	return categories, nil
}

func (r *Repo) CategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT category_id, name, tipo, color, icon
		FROM %s
		WHERE category_id = @category_id
		LIMIT 1
	`, r.table(categoriesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category_id", Value: id},
	}

	return r.readOneCategory(ctx, q, "CategoryByID")
}

func (r *Repo) CategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT category_id, name, tipo, color, icon
		FROM %s
		WHERE name = @name
		LIMIT 1
	`, r.table(categoriesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "name", Value: name},
	}

	return r.readOneCategory(ctx, q, "CategoryByName")
}

func (r *Repo) readOneCategory(ctx context.Context, q *bigquery.Query, op string) (*domain.Category, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	var row categoryRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: iter next: %w", op, err)
	}

	cat := row.toDomain()
	return &cat, nil
}

// InsertCategory adds one category row; used by the migrate command to seed
// the default taxonomy.
func (r *Repo) InsertCategory(ctx context.Context, cat domain.Category) error {
	q := r.client.Query(fmt.Sprintf(`
		INSERT %s (category_id, name, tipo, color, icon)
		VALUES (@category_id, @name, @tipo, @color, @icon)
	`, r.table(categoriesTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category_id", Value: cat.ID},
		{Name: "name", Value: cat.Name},
		{Name: "tipo", Value: string(cat.Type)},
		{Name: "color", Value: cat.Color},
		{Name: "icon", Value: cat.Icon},
	}

	if _, err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("InsertCategory: %w", err)
	}
	return nil
}
