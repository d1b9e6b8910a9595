// Package parser turns raw bank statement exports into canonical transaction
// drafts. Each supported bank contributes a BankParser that knows its own
// header labels, delimiter and field layout; the scan, reject and dedup
// pipeline is shared by every variant.
package parser

import (
	"strings"

	"github.com/dlozanor/finanzas/internal/domain"
)

// BankParser is implemented once per supported bank.
type BankParser interface {
	// Name is the bank's display name, e.g. "Eurocaja Rural".
	Name() string

	// Description is a short human-readable note for the bank catalog.
	Description() string

	// HeaderIndex returns the index of the line holding the statement's
	// data headers, or -1 when no such line exists. Data rows start on the
	// following line.
	HeaderIndex(lines []string) int

	// ParseLine converts one data row into a draft. It returns an error
	// describing why the row is unusable; such rows are skipped, never fatal.
	ParseLine(line string) (*domain.Draft, error)
}

// RowSkip explains why a statement line was excluded from the output.
type RowSkip struct {
	Line   int    `json:"line"` // 1-based line number in the file
	Reason string `json:"reason"`
}

// ParseStatement runs the shared statement pipeline: locate the header line,
// parse every following non-blank row, and deduplicate rows whose
// (date, description, amount) triple repeats, keeping the first occurrence.
// A statement with no recognizable header yields an empty result, not an
// error — the caller reads that as "bank mismatch or empty statement".
func ParseStatement(p BankParser, raw string) ([]domain.Draft, []RowSkip) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	header := p.HeaderIndex(lines)
	if header < 0 {
		return nil, nil
	}

	var (
		drafts []domain.Draft
		skips  []RowSkip
		seen   = make(map[string]bool)
	)

	for i := header + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		draft, err := p.ParseLine(line)
		if err != nil {
			skips = append(skips, RowSkip{Line: i + 1, Reason: err.Error()})
			continue
		}

		key := draft.Date + "\x00" + draft.Description + "\x00" + draft.Amount.String()
		if seen[key] {
			skips = append(skips, RowSkip{Line: i + 1, Reason: "duplicate of an earlier row"})
			continue
		}
		seen[key] = true
		drafts = append(drafts, *draft)
	}

	return drafts, skips
}
