package importer

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlozanor/finanzas/internal/domain"
	"github.com/dlozanor/finanzas/internal/filestore"
	"github.com/dlozanor/finanzas/internal/jobs"
	"github.com/dlozanor/finanzas/internal/parser"
	"github.com/dlozanor/finanzas/internal/storage/memory"
)

const workerStatement = `Fecha de ejecución;Fecha valor;Descripción;Importe;Saldo
15/01/2024;15/01/2024;COMPRA SUPERMERCADO DIA;-24,15 €;1.956,02 €
25/01/2024;25/01/2024;NOMINA EMPRESA SL;1.250,00 €;3.206,02 €
`

func TestJobHandlerImportsStatement(t *testing.T) {
	ctx := context.Background()

	files, err := filestore.NewLocal(t.TempDir())
	require.NoError(t, err)
	uri, err := files.Stage(ctx, "imports/run-1/extracto.csv", []byte(workerStatement))
	require.NoError(t, err)

	store := memory.NewSeededStore()
	run := &domain.ImportRun{ID: "run-1", BankID: "eurocaja-rural", Filename: "extracto.csv", FileURI: uri, Status: domain.ImportRunning}
	require.NoError(t, store.StartImportRun(ctx, run))

	imp := New(&mockEngine{}, store, 0, zerolog.Nop())
	handler := NewJobHandler(parser.DefaultRegistry(), files, imp, store, zerolog.Nop())

	job := &jobs.ImportStatementJob{
		JobID:    "job-1",
		ImportID: "run-1",
		BankID:   "eurocaja-rural",
		FileURI:  uri,
		Filename: "extracto.csv",
	}
	require.NoError(t, handler(ctx, job))

	txs, err := store.TransactionsByDateRange(ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestJobHandlerUnknownBankFailsRun(t *testing.T) {
	ctx := context.Background()

	files, err := filestore.NewLocal(t.TempDir())
	require.NoError(t, err)
	uri, err := files.Stage(ctx, "imports/run-2/extracto.csv", []byte(workerStatement))
	require.NoError(t, err)

	store := memory.NewSeededStore()
	run := &domain.ImportRun{ID: "run-2", BankID: "no-such-bank", Filename: "extracto.csv", FileURI: uri, Status: domain.ImportRunning}
	require.NoError(t, store.StartImportRun(ctx, run))

	imp := New(&mockEngine{}, store, 0, zerolog.Nop())
	handler := NewJobHandler(parser.DefaultRegistry(), files, imp, store, zerolog.Nop())

	job := &jobs.ImportStatementJob{
		JobID:    "job-2",
		ImportID: "run-2",
		BankID:   "no-such-bank",
		FileURI:  uri,
		Filename: "extracto.csv",
	}
	assert.Error(t, handler(ctx, job))
}
