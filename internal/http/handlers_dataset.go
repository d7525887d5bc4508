package http

import (
	"errors"
	"net/http"

	"finviz/internal/core"
	"finviz/internal/ingest"
	"finviz/internal/log"
	"finviz/internal/store"
)

const uploadField = "file"

type uploadResponse struct {
	Message   string `json:"message"`
	DatasetID string `json:"dataset_id"`
	Rows      int    `json:"rows"`
}

// handleUpload replaces the current dataset with a multipart CSV or XLSX file.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	if r.ContentLength > s.maxUploadBytes {
		PayloadTooLargeError("File too large").Write(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile(uploadField)
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			PayloadTooLargeError("File too large").Write(w)
			return
		}
		logger.WarnContext(ctx, "Upload without file", log.FieldError, err)
		BadRequestError("No file uploaded", "expected multipart field \""+uploadField+"\"").Write(w)
		return
	}
	defer file.Close()

	ds, err := s.datasets.Upload(ctx, header.Filename, file)
	if err != nil {
		s.writeIngestError(w, r, err)
		return
	}

	NewJSONResponse().Body(uploadResponse{
		Message:   "File uploaded successfully",
		DatasetID: ds.ID,
		Rows:      ds.Len(),
	}).Write(w)
}

// handleImportSheets replaces the current dataset with the configured sheet.
func (s *Server) handleImportSheets(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		NotFoundError("Google Sheets import is not configured").Write(w)
		return
	}

	ds, err := s.datasets.Import(r.Context(), s.importer)
	if err != nil {
		s.writeIngestError(w, r, err)
		return
	}

	NewJSONResponse().Body(uploadResponse{
		Message:   "Sheet imported successfully",
		DatasetID: ds.ID,
		Rows:      ds.Len(),
	}).Write(w)
}

// writeIngestError maps decoding failures to 400 and everything else to 500.
func (s *Server) writeIngestError(w http.ResponseWriter, r *http.Request, err error) {
	var headerErr *ingest.HeaderError
	var rowErrs ingest.RowErrors

	switch {
	case errors.As(err, &headerErr):
		BadRequestError("Missing required columns", headerErr.Error()).Write(w)
	case errors.As(err, &rowErrs):
		BadRequestError("Invalid rows", rowErrs.Details()...).Write(w)
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		BadRequestError("Unsupported file type, upload a .csv or .xlsx file").Write(w)
	case errors.Is(err, ingest.ErrEmptyFile), errors.Is(err, ingest.ErrNoRecords):
		BadRequestError("File contains no data", err.Error()).Write(w)
	case errors.Is(err, ingest.ErrMalformedFile):
		BadRequestError("File could not be read", err.Error()).Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dataset replacement failed",
			log.FieldError, err,
			log.FieldOperation, log.OpUpload,
			"error_type", log.ErrorTypeInternal)
		InternalServerError("Failed to replace dataset").Write(w)
		return
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "Dataset rejected",
		log.FieldError, err,
		"error_type", log.ErrorTypeValidation)
}

// handleData returns the records of the current dataset.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	ds, err := s.datasets.Latest(r.Context())
	if errors.Is(err, store.ErrNoDataset) {
		BadRequestError("No data available").Write(w)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Latest dataset read failed", log.FieldError, err)
		InternalServerError("Failed to read dataset").Write(w)
		return
	}

	records := ds.Records
	if records == nil {
		records = []core.Record{}
	}
	NewJSONResponse().Body(map[string]any{"data": records}).Write(w)
}

// handleCategories lists the unfiltered categories for the selector.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.datasets.Categories(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category listing failed", log.FieldError, err)
		InternalServerError("Failed to read categories").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{"categories": categories}).Write(w)
}
