package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/dlozanor/finanzas/internal/domain"
)

// StartImportRun records a statement upload entering the pipeline with
// status running.
func (r *Repo) StartImportRun(ctx context.Context, run *domain.ImportRun) error {
	q := r.client.Query(fmt.Sprintf(`
		INSERT %s (import_id, bank_id, filename, file_uri, status, started_ts)
		VALUES (@import_id, @bank_id, @filename, @file_uri, @status, @started_ts)
	`, r.table(importsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "import_id", Value: run.ID},
		{Name: "bank_id", Value: run.BankID},
		{Name: "filename", Value: run.Filename},
		{Name: "file_uri", Value: run.FileURI},
		{Name: "status", Value: run.Status},
		{Name: "started_ts", Value: run.StartedAt},
	}

	if _, err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("StartImportRun: %w", err)
	}
	return nil
}

// FinishImportRun closes an import run with its final status and counters.
func (r *Repo) FinishImportRun(ctx context.Context, id, status string, imported, skipped int, errMsg string) error {
	q := r.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    imported = @imported,
		    skipped = @skipped,
		    error_message = @error_message,
		    finished_ts = @finished_ts
		WHERE import_id = @import_id
	`, r.table(importsTable)))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: status},
		{Name: "imported", Value: imported},
		{Name: "skipped", Value: skipped},
		{Name: "error_message", Value: errMsg},
		{Name: "finished_ts", Value: time.Now().UTC()},
		{Name: "import_id", Value: id},
	}

	if _, err := r.runDML(ctx, q); err != nil {
		return fmt.Errorf("FinishImportRun: %w", err)
	}
	return nil
}
