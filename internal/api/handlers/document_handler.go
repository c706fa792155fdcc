package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tevslin/emailai/internal/config"
	"github.com/tevslin/emailai/internal/core"
	"github.com/tevslin/emailai/internal/core/ingestion_engine"
	"github.com/tevslin/emailai/internal/core/mailpage"
	"github.com/tevslin/emailai/internal/models"
)

const maxUploadBytes = 32 << 20 // 32 MB

type DocumentHandler struct {
	objectclient core.ObjectClient
	ingestor     ingestion_engine.Ingestor
	engine       *mailpage.Engine
	cfg          *config.Config
	log          logrus.FieldLogger
}

// NewDocumentHandler wires the document endpoints. obj may be nil, in which
// case upload and ingest answer 503.
func NewDocumentHandler(obj core.ObjectClient, ing ingestion_engine.Ingestor, engine *mailpage.Engine, cfg *config.Config, log logrus.FieldLogger) *DocumentHandler {
	return &DocumentHandler{objectclient: obj, ingestor: ing, engine: engine, cfg: cfg, log: log}
}

// ParseDocuments annotates every uploaded "file" part synchronously and
// returns the pages in upload order.
func (h *DocumentHandler) ParseDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		http.Error(w, "no file provided", http.StatusBadRequest)
		return
	}

	ann := mailpage.NewAnnotator(h.engine)
	resp := models.ParseResponse{Documents: make([]models.DocumentResult, 0, len(files))}
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		data, err := readPart(fh)
		if err != nil {
			http.Error(w, fmt.Sprintf("read %s: %v", name, err), http.StatusBadRequest)
			return
		}
		res, err := h.ingestor.ProcessDocument(r.Context(), ann, name, data, nil)
		if err != nil {
			h.log.WithError(err).WithField("source", name).Error("parse failed")
			http.Error(w, fmt.Sprintf("parse %s failed", name), http.StatusInternalServerError)
			return
		}
		resp.Documents = append(resp.Documents, res)
	}

	writeJSON(w, http.StatusOK, resp)
}

// UploadDocument stores the uploaded PDF in the configured bucket and
// schedules it for ingestion.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if h.objectclient == nil || h.cfg.BucketName == "" {
		http.Error(w, ingestion_engine.ErrNoStorage.Error(), http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}

	cleanFilename := filepath.Base(header.Filename)
	key := fmt.Sprintf("uploads/%s/%s", uuid.NewString(), cleanFilename)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}

	uploadctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	url, err := h.objectclient.UploadFile(uploadctx, h.cfg.BucketName, key, data, contentType)
	if err != nil {
		h.log.WithError(err).WithField("key", key).Error("upload failed")
		http.Error(w, "upload failed", http.StatusBadGateway)
		return
	}

	job, err := h.ingestor.Enqueue(h.cfg.BucketName, key)
	if err != nil {
		writeEnqueueError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, models.UploadResponse{Job: job, StorageURL: url})
}

// IngestDocument schedules an object that is already in storage.
func (h *DocumentHandler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req models.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	job, err := h.ingestor.Enqueue(req.Bucket, req.Key)
	if err != nil {
		writeEnqueueError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (h *DocumentHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.ingestor.Job(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeEnqueueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ingestion_engine.ErrBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ingestion_engine.ErrNoStorage), errors.Is(err, ingestion_engine.ErrQueueFull):
		w.Header().Set("Retry-After", "5")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
