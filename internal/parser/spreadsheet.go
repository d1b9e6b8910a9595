package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// delimited is implemented by parsers whose rows are separator-joined text.
// Spreadsheet ingestion needs it to rebuild rows a parser can split again.
type delimited interface {
	Delimiter() string
}

func rowDelimiter(p BankParser) string {
	if d, ok := p.(delimited); ok {
		return d.Delimiter()
	}
	return ";"
}

// workbookText flattens the first sheet of an Excel workbook into delimited
// lines so spreadsheet exports flow through the same statement pipeline as
// CSV files. Date cells left as raw serial numbers are handled downstream by
// the cell-date normalizer.
func workbookText(path, delimiter string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, delimiter))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
