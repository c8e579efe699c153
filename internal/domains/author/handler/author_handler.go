package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"book-catalog/internal/domains/author/model"
	"book-catalog/internal/domains/author/service"
	"book-catalog/internal/shared/response"
	"book-catalog/internal/shared/validate"
)

type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(svc service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{
		service: svc,
	}
}

// ParseID reads a positive int64 path parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrInvalidID
	}
	return id, nil
}

func (h *AuthorHandler) handleError(c *gin.Context, err error) {
	var fe validate.FieldErrors
	if errors.As(err, &fe) {
		response.ValidationFailed(c, fe)
		return
	}

	status := model.ToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("[AuthorHandler] Unexpected error")
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, model.ToErrorCode(err), err.Error())
}

// Create - POST /v1/authors
func (h *AuthorHandler) Create(c *gin.Context) {
	var req model.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, created.ToResponse())
}

// GetByID - GET /v1/authors/:id (includes the author's books)
func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, err := ParseID(c, "id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	a, books, err := h.service.GetWithBooks(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, a.ToDetailResponse(books))
}

// List - GET /v1/authors?search=
func (h *AuthorHandler) List(c *gin.Context) {
	var filter model.AuthorFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	authors, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]*model.AuthorResponse, 0, len(authors))
	for i := range authors {
		items = append(items, authors[i].ToResponse())
	}
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: len(items)})
}

// Update - PUT /v1/authors/:id
func (h *AuthorHandler) Update(c *gin.Context) {
	id, err := ParseID(c, "id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	var req model.AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, updated.ToResponse())
}

// Delete - DELETE /v1/authors/:id (cascades to the author's books)
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := ParseID(c, "id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	deletedBooks, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.DeleteAuthorResponse{ID: id, DeletedBooks: deletedBooks})
}
