// Package memory is an in-memory implementation of the storage surface.
// It backs tests and local runs; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dlozanor/finanzas/internal/domain"
	"github.com/dlozanor/finanzas/internal/storage"
)

// Store holds everything behind a single mutex; it is safe for concurrent
// use and returns copies so callers cannot mutate its state.
type Store struct {
	mu           sync.RWMutex
	nextCatID    int64
	categories   []domain.Category
	learned      []domain.Learned
	transactions []*domain.Transaction
	imports      map[string]*domain.ImportRun
}

func NewStore() *Store {
	return &Store{
		nextCatID: 1,
		imports:   make(map[string]*domain.ImportRun),
	}
}

// NewSeededStore returns a store preloaded with the default category
// taxonomy, matching what cmd/migrate seeds in BigQuery.
func NewSeededStore() *Store {
	s := NewStore()
	for _, c := range DefaultCategories() {
		s.AddCategory(c.Name, c.Type, c.Color, c.Icon)
	}
	return s
}

// DefaultCategories is the canonical starting taxonomy, including the
// "Otros" expense fallback the categorization engine relies on.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{Name: "Alimentación", Type: domain.Expense, Color: "#ef4444", Icon: "🍕"},
		{Name: "Transporte", Type: domain.Expense, Color: "#3b82f6", Icon: "🚗"},
		{Name: "Vivienda", Type: domain.Expense, Color: "#10b981", Icon: "🏠"},
		{Name: "Ocio", Type: domain.Expense, Color: "#f59e0b", Icon: "🎬"},
		{Name: "Salud", Type: domain.Expense, Color: "#8b5cf6", Icon: "🏥"},
		{Name: "Educación", Type: domain.Expense, Color: "#06b6d4", Icon: "📚"},
		{Name: "Ropa", Type: domain.Expense, Color: "#ec4899", Icon: "👕"},
		{Name: "Ahorros", Type: domain.Expense, Color: "#84cc16", Icon: "💰"},
		{Name: "Salario", Type: domain.Income, Color: "#22c55e", Icon: "💼"},
		{Name: "Freelance", Type: domain.Income, Color: "#f97316", Icon: "💻"},
		{Name: "Inversiones", Type: domain.Income, Color: "#6366f1", Icon: "📈"},
		{Name: domain.FallbackCategoryName, Type: domain.Expense, Color: "#64748b", Icon: "📦"},
	}
}

// AddCategory registers a category and returns its assigned id.
func (s *Store) AddCategory(name string, typ domain.CategoryType, color, icon string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextCatID
	s.nextCatID++
	s.categories = append(s.categories, domain.Category{
		ID: id, Name: name, Type: typ, Color: color, Icon: icon,
	})
	return id
}

func (s *Store) Categories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *Store) CategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.ID == id {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (s *Store) CategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.Name == name {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (s *Store) FindLearned(ctx context.Context, description string, amount decimal.Decimal) (*domain.Learned, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wantType := domain.TypeForAmount(amount)

	var best *domain.Learned
	for i := range s.learned {
		l := s.learned[i]
		if l.Description != description {
			continue
		}
		cat := s.categoryByIDLocked(l.CategoryID)
		if cat == nil || cat.Type != wantType {
			continue
		}
		if best == nil || l.Confidence > best.Confidence ||
			(l.Confidence == best.Confidence && l.CreatedAt.After(best.CreatedAt)) {
			lc := l
			best = &lc
		}
	}
	return best, nil
}

func (s *Store) InsertLearned(ctx context.Context, description string, categoryID int64, confidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.learned = append(s.learned, domain.Learned{
		Description: description,
		CategoryID:  categoryID,
		Confidence:  confidence,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (s *Store) UpsertLearnedByDescription(ctx context.Context, description string, categoryID int64, confidence float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Replace in place: the correction path must never leave two rows for
	// one description.
	kept := s.learned[:0]
	for _, l := range s.learned {
		if l.Description != description {
			kept = append(kept, l)
		}
	}
	s.learned = append(kept, domain.Learned{
		Description: description,
		CategoryID:  categoryID,
		Confidence:  confidence,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (s *Store) ValidatedDescriptions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, l := range s.learned {
		if l.Confidence >= 0.8 && !seen[l.Description] {
			seen[l.Description] = true
			out = append(out, l.Description)
		}
	}
	return out, nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("InsertTransaction: transaction ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txCopy := *tx
	s.transactions = append(s.transactions, &txCopy)
	return nil
}

func (s *Store) UpdateCategoryByDescription(ctx context.Context, description string, categoryID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := s.categoryByIDLocked(categoryID)
	if cat == nil {
		return 0, fmt.Errorf("UpdateCategoryByDescription: unknown category %d", categoryID)
	}

	var updated int64
	for _, tx := range s.transactions {
		if tx.Description == description {
			tx.Category = cat.Name
			updated++
		}
	}
	return updated, nil
}

func (s *Store) TransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if tx.ID == id {
			txCopy := *tx
			return &txCopy, nil
		}
	}
	return nil, nil
}

func (s *Store) TransactionsByDateRange(ctx context.Context, from, to string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Transaction
	for _, tx := range s.transactions {
		if (from == "" || tx.Date >= from) && (to == "" || tx.Date <= to) {
			txCopy := *tx
			out = append(out, &txCopy)
		}
	}
	return out, nil
}

func (s *Store) StartImportRun(ctx context.Context, run *domain.ImportRun) error {
	if run.ID == "" {
		return fmt.Errorf("StartImportRun: run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runCopy := *run
	s.imports[run.ID] = &runCopy
	return nil
}

func (s *Store) FinishImportRun(ctx context.Context, id, status string, imported, skipped int, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.imports[id]
	if !ok {
		return fmt.Errorf("FinishImportRun: import run not found: %s", id)
	}
	now := time.Now()
	run.Status = status
	run.Imported = imported
	run.Skipped = skipped
	run.Error = errMsg
	run.FinishedAt = &now
	return nil
}

func (s *Store) categoryByIDLocked(id int64) *domain.Category {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return &s.categories[i]
		}
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
