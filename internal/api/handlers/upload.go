package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dlozanor/finanzas/internal/api/middleware"
	"github.com/dlozanor/finanzas/internal/domain"
	"github.com/dlozanor/finanzas/internal/filestore"
	"github.com/dlozanor/finanzas/internal/jobs"
	"github.com/dlozanor/finanzas/internal/parser"
	"github.com/dlozanor/finanzas/internal/storage"
)

// maxUploadBytes caps a single statement upload.
const maxUploadBytes = 10 << 20

var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// UploadHandler handles statement upload endpoints.
type UploadHandler struct {
	registry  *parser.Registry
	files     filestore.Store
	runs      storage.ImportRunStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

func NewUploadHandler(registry *parser.Registry, files filestore.Store, runs storage.ImportRunStore, publisher jobs.Publisher, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		registry:  registry,
		files:     files,
		runs:      runs,
		publisher: publisher,
		log:       log,
	}
}

// ListBanks handles GET /api/upload/banks
func (h *UploadHandler) ListBanks(w http.ResponseWriter, r *http.Request) {
	banks := h.registry.Banks()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"banks": banks,
		"count": len(banks),
	})
}

// Upload handles POST /api/upload. The statement arrives as multipart form
// data with a "file" part and a "bank" field; the import itself runs
// asynchronously.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	bankID := r.FormValue("bank")
	if bankID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Bank is required")
		return
	}
	if h.registry.Get(bankID) == nil {
		middleware.WriteError(w, http.StatusNotFound, fmt.Sprintf("Unknown bank: %s", bankID))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file type: %s", ext))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read uploaded file")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	importID := uuid.NewString()
	filename := filepath.Base(header.Filename)
	objectName := fmt.Sprintf("imports/%s/%s", importID, filename)

	uri, err := h.files.Stage(ctx, objectName, data)
	if err != nil {
		h.log.Error().Err(err).Str("object", objectName).Msg("Failed to stage statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	run := &domain.ImportRun{
		ID:        importID,
		BankID:    bankID,
		Filename:  filename,
		FileURI:   uri,
		Status:    domain.ImportRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := h.runs.StartImportRun(ctx, run); err != nil {
		h.log.Error().Err(err).Str("import_id", importID).Msg("Failed to record import run")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to start import")
		return
	}

	job := &jobs.ImportStatementJob{
		ImportID: importID,
		BankID:   bankID,
		FileURI:  uri,
		Filename: filename,
	}
	if err := h.publisher.PublishImportStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Str("import_id", importID).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import")
		return
	}

	h.log.Info().
		Str("import_id", importID).
		Str("job_id", job.JobID).
		Str("bank_id", bankID).
		Str("filename", filename).
		Msg("Statement upload accepted")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"import_id": importID,
		"job_id":    job.JobID,
		"file_uri":  uri,
		"status":    "pending",
	})
}
