package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appcontracts "github.com/clausewise/clausewise/internal/application/contracts"
	domain "github.com/clausewise/clausewise/internal/domain/documents"
	"github.com/clausewise/clausewise/internal/middleware"
)

// POST /api/v1/contracts/upload (multipart, field "file")
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload+1024)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		return badRequest{"upload too large or malformed"}
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest{"missing file field"}
	}
	defer file.Close()

	if err := middleware.ValidateFilename(header.Filename); err != nil {
		return badRequest{err.Error()}
	}
	if err := middleware.ValidateFileSize(header.Size, r.maxUpload); err != nil {
		return badRequest{err.Error()}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	if err := middleware.ValidateFileContent(header.Filename, data); err != nil {
		return badRequest{err.Error()}
	}

	res, err := r.contractsSvc.Upload(req.Context(), appcontracts.UploadCommand{
		UserID:      middleware.GetUserIDFromContext(req.Context()),
		Filename:    middleware.SanitizeFilename(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	if !res.Duplicate {
		w.WriteHeader(http.StatusCreated)
	}
	return json.NewEncoder(w).Encode(res)
}

// GET /api/v1/contracts?limit=20&offset=0
func (r *Router) handleListContracts(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserIDFromContext(req.Context())
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.contractsSvc.List(req.Context(), userID, limit, offset)
	if err != nil {
		return err
	}
	total, err := r.contractsSvc.Count(req.Context(), userID)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"documents": list,
		"total":     total,
	})
}

// GET /api/v1/contracts/{id}
func (r *Router) handleGetContract(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserIDFromContext(req.Context())
	id := chi.URLParam(req, "id")

	doc, err := r.contractsSvc.Get(req.Context(), userID, domain.DocumentID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(doc)
}

// POST /api/v1/contracts/{id}/analyze
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserIDFromContext(req.Context())
	id := chi.URLParam(req, "id")

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	res, err := r.contractsSvc.Analyze(req.Context(), userID, domain.DocumentID(id))
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

// GET /api/v1/contracts/{id}/status
func (r *Router) handleStatus(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserIDFromContext(req.Context())
	id := chi.URLParam(req, "id")

	st, err := r.contractsSvc.Status(req.Context(), userID, domain.DocumentID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(st)
}

// DELETE /api/v1/contracts/{id}
func (r *Router) handleDeleteContract(w http.ResponseWriter, req *http.Request) error {
	userID := middleware.GetUserIDFromContext(req.Context())
	id := chi.URLParam(req, "id")

	if err := r.contractsSvc.Delete(req.Context(), userID, domain.DocumentID(id)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
