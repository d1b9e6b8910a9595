package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "eurocaja-rural", Slug("Eurocaja Rural"))
	assert.Equal(t, "banco-de-tres-palabras", Slug("Banco De Tres Palabras"))
	assert.Equal(t, "caixa", Slug("  Caixa "))
}

func TestRegistry_Banks(t *testing.T) {
	banks := DefaultRegistry().Banks()
	require.Len(t, banks, 1)
	assert.Equal(t, "eurocaja-rural", banks[0].ID)
	assert.Equal(t, "Eurocaja Rural", banks[0].Name)
	assert.NotEmpty(t, banks[0].Description)
}

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("eurocaja-rural"))
	assert.Nil(t, r.Get("banco-fantasma"))
	assert.Nil(t, r.Get(""))
}

func TestRegistry_ParseFile_BankErrors(t *testing.T) {
	r := DefaultRegistry()

	// Both failures happen before the file is touched: the path does not
	// even exist and must never be reported as the problem.
	_, err := r.ParseFile("/nonexistent/statement.csv", "")
	assert.ErrorIs(t, err, ErrBankUnspecified)

	_, err = r.ParseFile("/nonexistent/statement.csv", "banco-fantasma")
	var unknown *UnknownBankError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "banco-fantasma", unknown.BankID)
}

func TestRegistry_ParseFile_MissingFile(t *testing.T) {
	_, err := DefaultRegistry().ParseFile("/nonexistent/statement.csv", "eurocaja-rural")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "Eurocaja Rural", parseErr.Bank)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRegistry_ParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movimientos.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleStatement), 0o644))

	res, err := DefaultRegistry().ParseFile(path, "eurocaja-rural")
	require.NoError(t, err)

	assert.Equal(t, "Eurocaja Rural", res.Bank)
	assert.Equal(t, "eurocaja-rural", res.BankID)
	assert.Equal(t, 3, res.Count)
	assert.Len(t, res.Transactions, 3)
}

func TestRegistry_Parse_EmptyStatement(t *testing.T) {
	res, err := DefaultRegistry().Parse([]byte("nada que ver aqui\n"), "eurocaja-rural")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.Empty(t, res.Transactions)
}
