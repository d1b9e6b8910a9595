package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlozanor/finanzas/internal/domain"
)

// BankInfo is the read-only catalog projection of a registered parser.
type BankInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry maps bank ids to their parsers. It is a pure mapping built once at
// startup and passed to whoever needs it; it is not mutated afterwards.
type Registry struct {
	parsers []BankParser
}

func NewRegistry(parsers ...BankParser) *Registry {
	return &Registry{parsers: parsers}
}

// DefaultRegistry registers every bank this build supports.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewEurocajaRural(),
	)
}

// Slug derives the stable, URL-safe bank id from a display name:
// lowercase with spaces turned into hyphens.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Banks lists the supported bank catalog.
func (r *Registry) Banks() []BankInfo {
	banks := make([]BankInfo, 0, len(r.parsers))
	for _, p := range r.parsers {
		banks = append(banks, BankInfo{
			ID:          Slug(p.Name()),
			Name:        p.Name(),
			Description: p.Description(),
		})
	}
	return banks
}

// Get returns the parser registered under bankID, or nil.
func (r *Registry) Get(bankID string) BankParser {
	for _, p := range r.parsers {
		if Slug(p.Name()) == bankID {
			return p
		}
	}
	return nil
}

// ParseResult is the uniform outcome of dispatching a file to a parser.
type ParseResult struct {
	Bank         string         `json:"bank"`
	BankID       string         `json:"bankId"`
	Transactions []domain.Draft `json:"transactions"`
	Skipped      []RowSkip      `json:"skipped,omitempty"`
	Count        int            `json:"count"`
}

// Parse runs the parser selected by bankID over raw statement bytes.
func (r *Registry) Parse(raw []byte, bankID string) (*ParseResult, error) {
	p, err := r.lookup(bankID)
	if err != nil {
		return nil, err
	}
	return r.run(p, string(raw))
}

// ParseFile parses the statement file at path with the parser selected by
// bankID. The bank id is validated before the file is touched, so an
// unspecified or unknown bank never reads a byte. Spreadsheet files (.xlsx)
// are flattened into delimited rows and fed through the same pipeline.
func (r *Registry) ParseFile(path, bankID string) (*ParseResult, error) {
	p, err := r.lookup(bankID)
	if err != nil {
		return nil, err
	}

	var raw string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		raw, err = workbookText(path, rowDelimiter(p))
		if err != nil {
			return nil, &ParseError{Bank: p.Name(), Err: err}
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ParseError{Bank: p.Name(), Err: fmt.Errorf("reading file: %w", err)}
		}
		raw = string(data)
	}

	return r.run(p, raw)
}

func (r *Registry) lookup(bankID string) (BankParser, error) {
	if bankID == "" {
		return nil, ErrBankUnspecified
	}
	p := r.Get(bankID)
	if p == nil {
		return nil, &UnknownBankError{BankID: bankID}
	}
	return p, nil
}

func (r *Registry) run(p BankParser, raw string) (*ParseResult, error) {
	drafts, skips := ParseStatement(p, raw)
	return &ParseResult{
		Bank:         p.Name(),
		BankID:       Slug(p.Name()),
		Transactions: drafts,
		Skipped:      skips,
		Count:        len(drafts),
	}, nil
}
