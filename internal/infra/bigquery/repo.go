// Package bigquery implements the storage.Store surface on BigQuery.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dlozanor/finanzas/internal/storage"
)

const (
	// DefaultDatasetID is the dataset all tables live in.
	DefaultDatasetID = "finanzas"

	categoriesTable   = "categories"
	transactionsTable = "transactions"
	learnedTable      = "concept_categories"
	importsTable      = "imports"

	dateFormat = "2006-01-02"
)

// Repo is the BigQuery-backed store. All queries are parameterized and run
// against a single dataset.
type Repo struct {
	client    *bigquery.Client
	datasetID string
}

var _ storage.Store = (*Repo)(nil)

func NewRepo(ctx context.Context, projectID, datasetID string) (*Repo, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepo: bigquery client: %w", err)
	}
	return NewRepoWithClient(client, datasetID), nil
}

// NewRepoWithClient wraps an existing client; the caller keeps ownership of
// the client's lifecycle.
func NewRepoWithClient(client *bigquery.Client, datasetID string) *Repo {
	if datasetID == "" {
		datasetID = DefaultDatasetID
	}
	return &Repo{client: client, datasetID: datasetID}
}

func (r *Repo) Close() error {
	return r.client.Close()
}

func (r *Repo) table(name string) string {
	return fmt.Sprintf("%s.%s", r.datasetID, name)
}

// runDML executes a DML query to completion and returns the number of
// affected rows. Callers wrap the error with their own prefix.
func (r *Repo) runDML(ctx context.Context, q *bigquery.Query) (int64, error) {
	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("job error: %w", err)
	}
	if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return qs.NumDMLAffectedRows, nil
	}
	return 0, nil
}
