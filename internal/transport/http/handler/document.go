package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pankajkkc01/RAG-application/internal/app"
	"github.com/pankajkkc01/RAG-application/internal/loader"
	"github.com/pankajkkc01/RAG-application/internal/transport/http/response"
)

type DocumentHandler struct {
	docService *app.DocumentService
	maxUpload  int64
}

func NewDocumentHandler(docService *app.DocumentService, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &DocumentHandler{
		docService: docService,
		maxUpload:  maxUploadBytes,
	}
}

// Upload accepts a multipart form with "file". Unsupported extensions are
// rejected before the file is read.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if !loader.SupportedExtension(file.Filename) {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unsupported file type: only pdf, docx and html are allowed")
		return
	}
	if file.Size > h.maxUpload {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	result, err := h.docService.Upload(c.Request.Context(), app.UploadInput{
		Filename: file.Filename,
		File:     f,
	})
	if err != nil {
		switch {
		case errors.Is(err, loader.ErrUnsupportedFormat),
			errors.Is(err, app.ErrInvalidInput),
			errors.Is(err, app.ErrNoExtractedText):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to index document")
		}
		return
	}

	response.OK(c, gin.H{
		"message":     "Uploaded & indexed",
		"file_id":     result.DocumentID,
		"chunk_count": result.ChunkCount,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docService.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	deletedFromIndex, deletedFromStore := h.docService.Delete(c.Request.Context(), uint(id))
	response.OK(c, gin.H{
		"deleted_from_index": deletedFromIndex,
		"deleted_from_store": deletedFromStore,
	})
}
