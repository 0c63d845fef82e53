package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/middleware"
	"docuchat/internal/transport/http/response"
)

type FileHandler struct {
	ingestService *app.IngestService
	maxUploadLen  int64 // raw upload bytes
}

func NewFileHandler(ingestService *app.IngestService, maxUploadBytes int64) *FileHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &FileHandler{ingestService: ingestService, maxUploadLen: maxUploadBytes}
}

// UploadPDF accepts a multipart file, registers it as a pending document and
// enqueues indexing. Clients poll GET /api/files for the indexing outcome.
func (h *FileHandler) UploadPDF(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "multipart field 'file' is required")
		return
	}
	if fileHeader.Size > h.maxUploadLen {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeValidationError, "file exceeds the size limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "file could not be read")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadLen+1))
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "file could not be read")
		return
	}
	if int64(len(data)) > h.maxUploadLen {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeValidationError, "file exceeds the size limit")
		return
	}

	doc, err := h.ingestService.Upload(c.Request.Context(), principal.Subject, fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnsupportedFile):
			response.Error(c, http.StatusUnsupportedMediaType, response.CodeValidationError, "unsupported file type")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeValidationError, "empty upload")
		case errors.Is(err, app.ErrJobEnqueue):
			response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "indexing queue unavailable")
		default:
			response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "upload failed")
		}
		return
	}

	response.OK(c, gin.H{
		"id":       doc.ID,
		"filename": doc.Filename,
		"status":   doc.Status,
	})
}

func (h *FileHandler) ListFiles(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
		return
	}

	docs, err := h.ingestService.ListDocuments(principal.Subject)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "file listing unavailable")
		return
	}
	response.OK(c, docs)
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
		return
	}

	documentID := c.Param("id")
	if documentID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "document id is required")
		return
	}

	if err := h.ingestService.Delete(c.Request.Context(), principal.Subject, documentID); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "document not found")
			return
		}
		response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "delete failed")
		return
	}
	response.OK(c, gin.H{"status": "success"})
}

type SearchFilesRequest struct {
	Query string `json:"query"`
}

func (h *FileHandler) SearchFiles(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized")
		return
	}

	var req SearchFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "invalid request payload")
		return
	}

	results, err := h.ingestService.Search(c.Request.Context(), principal.Subject, req.Query)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeValidationError, "query is required")
			return
		}
		response.Error(c, http.StatusServiceUnavailable, response.CodeStorageError, "search unavailable")
		return
	}
	if results == nil {
		results = []app.SearchResult{}
	}
	response.OK(c, gin.H{"results": results})
}
