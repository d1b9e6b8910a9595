package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dlozanor/finanzas/internal/domain"
	"github.com/dlozanor/finanzas/internal/filestore"
	"github.com/dlozanor/finanzas/internal/jobs"
	"github.com/dlozanor/finanzas/internal/parser"
	"github.com/dlozanor/finanzas/internal/storage"
)

// NewJobHandler builds the queue handler that drives one statement import
// end to end: fetch the staged file, parse it, categorize and store every
// row, and close the import run.
func NewJobHandler(registry *parser.Registry, files filestore.Store, imp *Importer, runs storage.ImportRunStore, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		stmt, ok := job.(*jobs.ImportStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type %s", job.GetType())
		}

		log.Info().
			Str("job_id", stmt.JobID).
			Str("import_id", stmt.ImportID).
			Str("bank_id", stmt.BankID).
			Msg("Import job started")

		err := runImport(ctx, registry, files, imp, runs, stmt)
		if err != nil {
			log.Error().Err(err).Str("import_id", stmt.ImportID).Msg("Import job failed")
			if ferr := runs.FinishImportRun(ctx, stmt.ImportID, domain.ImportFailed, 0, 0, err.Error()); ferr != nil {
				log.Error().Err(ferr).Str("import_id", stmt.ImportID).Msg("Failed to mark import run failed")
			}
			return err
		}

		return nil
	}
}

func runImport(ctx context.Context, registry *parser.Registry, files filestore.Store, imp *Importer, runs storage.ImportRunStore, stmt *jobs.ImportStatementJob) error {
	data, err := files.Fetch(ctx, stmt.FileURI)
	if err != nil {
		return fmt.Errorf("fetching statement: %w", err)
	}

	// Spreadsheets are parsed from disk, so the staged bytes go through a
	// scratch file carrying the original extension.
	tmpDir, err := os.MkdirTemp("", "finanzas-import-")
	if err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(stmt.Filename))
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing scratch file: %w", err)
	}

	parsed, err := registry.ParseFile(tmpPath, stmt.BankID)
	if err != nil {
		return fmt.Errorf("parsing statement: %w", err)
	}

	res := imp.ImportBatch(ctx, parsed.Bank, parsed.Transactions)

	status := domain.ImportSuccess
	errMsg := ""
	if len(res.Errors) > 0 && res.Imported == 0 {
		status = domain.ImportFailed
		errMsg = res.Errors[0]
	}

	skipped := len(parsed.Skipped) + len(res.Errors)
	if err := runs.FinishImportRun(ctx, stmt.ImportID, status, res.Imported, skipped, errMsg); err != nil {
		return fmt.Errorf("closing import run: %w", err)
	}

	return nil
}
