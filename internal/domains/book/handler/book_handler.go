package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/domains/book/service"
	"book-catalog/internal/shared/response"
	"book-catalog/internal/shared/validate"
)

type BookHandler struct {
	service service.ServiceInterface
}

func NewBookHandler(service service.ServiceInterface) *BookHandler {
	return &BookHandler{service: service}
}

func parseBookID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrInvalidID
	}
	return id, nil
}

// handleBookError writes the JSON error for err using the book error map.
func handleBookError(c *gin.Context, err error) {
	var fe validate.FieldErrors
	if errors.As(err, &fe) {
		response.ValidationFailed(c, fe)
		return
	}

	status, code, message, ok := model.LookupError(err)
	if !ok {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("[BookHandler] Unexpected error")
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorWithDetails(c, status, code, message, err.Error())
}

// ListBooks - GET /v1/books?author_id=&search=
func (h *BookHandler) ListBooks(c *gin.Context) {
	var filter model.BookFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	books, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		handleBookError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, model.ToBookResponses(books), &response.Meta{Total: len(books)})
}

// GetBookDetail - GET /v1/books/:id
func (h *BookHandler) GetBookDetail(c *gin.Context) {
	id, err := parseBookID(c)
	if err != nil {
		handleBookError(c, err)
		return
	}

	book, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, book.ToResponse())
}

// CreateBook - POST /v1/books
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req model.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	book, err := h.service.Create(c.Request.Context(), req.ToInput(nil))
	if err != nil {
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, book.ToResponse())
}

// UpdateBook - PUT /v1/books/:id
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, err := parseBookID(c)
	if err != nil {
		handleBookError(c, err)
		return
	}

	var req model.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	book, err := h.service.Update(c.Request.Context(), id, req.ToInput(nil))
	if err != nil {
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, book.ToResponse())
}

// DeleteBook - DELETE /v1/books/:id
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := parseBookID(c)
	if err != nil {
		handleBookError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleBookError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// ExportBooks - GET /v1/books/export?author_id=&search=
func (h *BookHandler) ExportBooks(c *gin.Context) {
	var filter model.BookFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	f, err := h.service.ExportBooksToExcel(c.Request.Context(), filter)
	if err != nil {
		handleBookError(c, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("books_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("[BookHandler] Failed to write export")
	}
}
