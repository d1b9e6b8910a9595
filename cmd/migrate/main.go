// Command migrate creates the BigQuery dataset and tables and seeds the
// default category taxonomy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	infraBQ "github.com/dlozanor/finanzas/internal/infra/bigquery"
	"github.com/dlozanor/finanzas/internal/storage/memory"
)

var (
	projectID = flag.String("project", "", "GCP project ID (required)")
	datasetID = flag.String("dataset", infraBQ.DefaultDatasetID, "BigQuery dataset ID")
	location  = flag.String("location", "EU", "BigQuery dataset location")
	seed      = flag.Bool("seed", true, "seed the default category taxonomy when the table is empty")
)

func main() {
	flag.Parse()

	ctx := context.Background()

	if *projectID == "" {
		log.Fatal("Error: -project flag is required. Please specify your GCP project ID.")
	}

	client, err := bigquery.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer client.Close()

	log.Printf("Connected to BigQuery project: %s, dataset: %s", *projectID, *datasetID)

	if err := ensureDataset(ctx, client); err != nil {
		log.Fatalf("Failed to ensure dataset: %v", err)
	}

	for name, ddl := range tableDDL(*datasetID) {
		log.Printf("  [RUN]  %s", name)
		if err := runStatement(ctx, client, ddl); err != nil {
			log.Fatalf("Failed to create table %s: %v", name, err)
		}
		log.Printf("  [OK]   %s", name)
	}

	if *seed {
		if err := seedCategories(ctx, client); err != nil {
			log.Fatalf("Failed to seed categories: %v", err)
		}
	}

	log.Println("Migration completed.")
}

func ensureDataset(ctx context.Context, client *bigquery.Client) error {
	ds := client.Dataset(*datasetID)
	err := ds.Create(ctx, &bigquery.DatasetMetadata{Location: *location})
	if err != nil {
		// Already exists is fine.
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == 409 {
			return nil
		}
		return err
	}
	log.Printf("Created dataset %s in %s", *datasetID, *location)
	return nil
}

func tableDDL(dataset string) map[string]string {
	return map[string]string{
		"categories": fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.categories (
				category_id INT64 NOT NULL,
				name STRING NOT NULL,
				tipo STRING NOT NULL,
				color STRING,
				icon STRING
			)`, dataset),
		"transactions": fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.transactions (
				transaction_id STRING NOT NULL,
				fecha DATE NOT NULL,
				hora STRING,
				concepto STRING NOT NULL,
				importe NUMERIC NOT NULL,
				saldo NUMERIC,
				categoria STRING,
				banco STRING,
				notas STRING,
				created_at TIMESTAMP NOT NULL
			)`, dataset),
		"concept_categories": fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.concept_categories (
				concepto STRING NOT NULL,
				category_id INT64 NOT NULL,
				confidence FLOAT64 NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`, dataset),
		"imports": fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s.imports (
				import_id STRING NOT NULL,
				bank_id STRING NOT NULL,
				filename STRING,
				file_uri STRING,
				status STRING NOT NULL,
				imported INT64,
				skipped INT64,
				error_message STRING,
				started_ts TIMESTAMP NOT NULL,
				finished_ts TIMESTAMP
			)`, dataset),
	}
}

func runStatement(ctx context.Context, client *bigquery.Client, stmt string) error {
	q := client.Query(stmt)
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running statement: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

// seedCategories inserts the default taxonomy, but only into an empty table
// so re-running the migration never duplicates rows.
func seedCategories(ctx context.Context, client *bigquery.Client) error {
	repo := infraBQ.NewRepoWithClient(client, *datasetID)

	existing, err := repo.Categories(ctx)
	if err != nil {
		return fmt.Errorf("listing categories: %w", err)
	}
	if len(existing) > 0 {
		log.Printf("Categories table already has %d rows, skipping seed", len(existing))
		return nil
	}

	defaults := memory.DefaultCategories()
	for i, cat := range defaults {
		cat.ID = int64(i + 1)
		if err := repo.InsertCategory(ctx, cat); err != nil {
			return fmt.Errorf("inserting category %q: %w", cat.Name, err)
		}
	}

	log.Printf("Seeded %d default categories", len(defaults))
	return nil
}
