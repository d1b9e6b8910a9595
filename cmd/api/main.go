package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dlozanor/finanzas/internal/ai"
	"github.com/dlozanor/finanzas/internal/api/handlers"
	"github.com/dlozanor/finanzas/internal/api/middleware"
	"github.com/dlozanor/finanzas/internal/categorize"
	"github.com/dlozanor/finanzas/internal/filestore"
	"github.com/dlozanor/finanzas/internal/importer"
	infraBQ "github.com/dlozanor/finanzas/internal/infra/bigquery"
	"github.com/dlozanor/finanzas/internal/jobs/inmemory"
	"github.com/dlozanor/finanzas/internal/logger"
	"github.com/dlozanor/finanzas/internal/parser"
	"github.com/dlozanor/finanzas/internal/storage"
	"github.com/dlozanor/finanzas/internal/storage/memory"
)

func main() {
	var (
		port     = flag.String("port", "8080", "HTTP server port")
		project  = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "Google Cloud project id (or set GOOGLE_CLOUD_PROJECT env)")
		dataset  = flag.String("dataset", infraBQ.DefaultDatasetID, "BigQuery dataset id")
		bucket   = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket name for statement uploads (or set GCS_BUCKET env)")
		model    = flag.String("model", ai.DefaultModelName, "Gemini model used for categorization")
		throttle = flag.Duration("throttle", time.Second, "pause between AI-categorized rows")
		local    = flag.Bool("local", false, "run with in-memory storage and local file staging")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	var store storage.Store
	var files filestore.Store

	if *local {
		store = memory.NewSeededStore()
		localFiles, err := filestore.NewLocal(uploadDir())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local file store")
		}
		files = localFiles
		log.Info().Msg("Running in local mode")
	} else {
		if *project == "" {
			log.Fatal().Msg("Project id is required (use -project or GOOGLE_CLOUD_PROJECT)")
		}
		if *bucket == "" {
			log.Fatal().Msg("Bucket is required (use -bucket or GCS_BUCKET)")
		}

		repo, err := infraBQ.NewRepo(ctx, *project, *dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery store")
		}
		defer repo.Close()

		store = repo
		files = filestore.NewGCS(*bucket)
	}

	registry := parser.DefaultRegistry()
	classifier := ai.NewGeminiClassifier(*model)
	engine := categorize.NewEngine(store, classifier, log)
	imp := importer.New(engine, store, *throttle, log)

	// Job infrastructure: single worker, jobs survive only for the process
	// lifetime.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := importer.NewJobHandler(registry, files, imp, store, log)

	go func() {
		log.Info().Msg("Starting import worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Import worker stopped with error")
		}
	}()

	uploadHandler := handlers.NewUploadHandler(registry, files, store, jobQueue, log)
	transactionsHandler := handlers.NewTransactionsHandler(store, engine, log)
	categoriesHandler := handlers.NewCategoriesHandler(store, store, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/upload/banks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			uploadHandler.ListBanks(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			uploadHandler.Upload(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			transactionID := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
			if transactionID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
				return
			}
			transactionsHandler.Correct(w, r, transactionID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			categoriesHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/validated-concepts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			categoriesHandler.ValidatedConcepts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.Get(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Job queue shutdown error")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}

// uploadDir returns the local staging directory.
func uploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "data/uploads"
	}
	return dir
}
