package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"book-catalog/internal/domains/book/model"
	bookService "book-catalog/internal/domains/book/service"
	"book-catalog/internal/shared/response"
)

// multipartOverhead is the room left for boundaries and part headers on top
// of the file size limit.
const multipartOverhead = 1 << 20

type BulkImportHandler struct {
	service     bookService.BulkImportServiceInterface
	maxFileSize int64
}

// NewBulkImportHandler creates the import handler
func NewBulkImportHandler(service bookService.BulkImportServiceInterface, maxFileSize int64) *BulkImportHandler {
	return &BulkImportHandler{
		service:     service,
		maxFileSize: maxFileSize,
	}
}

// ImportBooks - POST /v1/books/import (multipart/form-data, field "file")
func (h *BulkImportHandler) ImportBooks(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_FILE", "Invalid import file",
				gin.H{"size": "file is too large"})
			return
		}
		response.BadRequest(c, "file is required (multipart/form-data)")
		return
	}

	upload := model.ImportFile{Name: file.Filename, Size: file.Size, MaxSize: h.maxFileSize}
	if err := upload.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_FILE", "Invalid import file", err)
		return
	}

	log.Info().
		Str("request_id", c.GetString("request_id")).
		Str("file_name", file.Filename).
		Int64("file_size", file.Size).
		Msg("[BulkImportHandler] Received import request")

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "failed to open uploaded file")
		return
	}
	defer src.Close()

	result, err := h.service.ImportBooks(c.Request.Context(), file.Filename, src)
	if err != nil {
		var importErr *model.ImportError
		if errors.As(err, &importErr) {
			response.ErrorWithDetails(c, http.StatusUnprocessableEntity,
				"IMPORT_VALIDATION_FAILED", "No books were imported: fix the listed rows", importErr.Rows)
			return
		}
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}
