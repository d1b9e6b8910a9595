package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlozanor/finanzas/internal/domain"
	"github.com/dlozanor/finanzas/internal/normalize"
)

// Eurocaja Rural CSV exports: a preamble of account metadata, then a header
// line "Fecha de ejecución;Fecha valor;Descripción;Importe;Saldo", then one
// semicolon-delimited row per movement.
type EurocajaRural struct{}

func NewEurocajaRural() *EurocajaRural { return &EurocajaRural{} }

func (*EurocajaRural) Name() string { return "Eurocaja Rural" }

func (*EurocajaRural) Description() string {
	return "Extractos CSV de Eurocaja Rural"
}

// Delimiter reports the field separator, used when reconstructing rows from
// spreadsheet exports.
func (*EurocajaRural) Delimiter() string { return ";" }

// The header is located by keyword presence, not by strict schema match:
// banks pad these lines with empty trailing columns.
var eurocajaHeaderKeywords = []string{"Fecha de ejecución", "Descripción", "Importe"}

func (*EurocajaRural) HeaderIndex(lines []string) int {
	for i, line := range lines {
		found := true
		for _, kw := range eurocajaHeaderKeywords {
			if !strings.Contains(line, kw) {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

const eurocajaMinFields = 5

func (p *EurocajaRural) ParseLine(line string) (*domain.Draft, error) {
	fields := strings.Split(line, ";")
	if len(fields) < eurocajaMinFields {
		return nil, fmt.Errorf("row has %d fields, want at least %d", len(fields), eurocajaMinFields)
	}

	var (
		execDate    = strings.TrimSpace(fields[0])
		valueDate   = strings.TrimSpace(fields[1])
		description = strings.TrimSpace(fields[2])
		amountRaw   = strings.TrimSpace(fields[3])
		balanceRaw  = strings.TrimSpace(fields[4])
	)

	if execDate == "" || description == "" || amountRaw == "" {
		return nil, fmt.Errorf("missing required fields (date, description or amount)")
	}

	executed := normalize.ParseCellDate(execDate)
	if executed.Date == "" {
		return nil, fmt.Errorf("invalid execution date %q", execDate)
	}

	amount, ok := normalize.ParseAmount(amountRaw)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amountRaw)
	}

	// Unparseable balances default to zero; the running balance is a
	// snapshot, not required data.
	balance, _ := normalize.ParseAmount(balanceRaw)

	settled := normalize.ParseCellDate(valueDate)
	if settled.Date == "" {
		settled.Date = executed.Date
	}

	return &domain.Draft{
		Date:        executed.Date,
		Time:        executed.Time,
		Description: cleanDescription(description),
		Amount:      amount,
		Balance:     balance,
		Bank:        p.Name(),
		ValueDate:   settled.Date,
	}, nil
}

var (
	innerSpace    = regexp.MustCompile(`\s+`)
	cardSuffix    = regexp.MustCompile(`TJ\*{4,}\d+`)
	trailingDates = regexp.MustCompile(`\s+\d{2}/\d{2}/\d{2,4}`)
)

// cleanDescription collapses whitespace, redacts card number suffixes and
// strips the dates some movements carry appended to the concept.
func cleanDescription(s string) string {
	s = innerSpace.ReplaceAllString(strings.TrimSpace(s), " ")
	s = cardSuffix.ReplaceAllString(s, "TJ****")
	s = trailingDates.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
