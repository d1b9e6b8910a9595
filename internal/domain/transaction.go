package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Draft is a transaction parsed from a bank statement that has not been
// persisted yet. Dates are ISO strings ("2006-01-02") because that is the
// canonical form every bank layout is normalized into.
type Draft struct {
	Date        string          `json:"date"`                // execution date, required
	Time        string          `json:"time,omitempty"`      // "15:04", "00:00" when the statement has no time
	Description string          `json:"description"`         // cleaned description, required
	Amount      decimal.Decimal `json:"amount"`              // negative = expense, positive = income
	Balance     decimal.Decimal `json:"balance"`             // running balance, zero if unknown
	Bank        string          `json:"bank"`                // display name of the source bank
	ValueDate   string          `json:"value_date,omitempty"` // settlement date, falls back to Date
}

// Transaction is a persisted, categorized transaction.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Time        string          `json:"time,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
	Category    string          `json:"category"`
	Bank        string          `json:"bank"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Learned is a description→category association remembered from a previous
// successful categorization. Confidence 1.0 rows come from explicit user
// corrections, everything below from the AI classifier.
type Learned struct {
	Description string
	CategoryID  int64
	Confidence  float64
	CreatedAt   time.Time
}

// ImportRun records one statement upload being driven through the import
// pipeline.
type ImportRun struct {
	ID         string
	BankID     string
	Filename   string
	FileURI    string
	Status     string // RUNNING, SUCCESS or FAILED
	Imported   int
	Skipped    int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Import run statuses.
const (
	ImportRunning = "RUNNING"
	ImportSuccess = "SUCCESS"
	ImportFailed  = "FAILED"
)
