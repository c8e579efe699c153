// Package web serves the server-rendered catalog pages.
package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	authorModel "book-catalog/internal/domains/author/model"
	authorService "book-catalog/internal/domains/author/service"
	bookModel "book-catalog/internal/domains/book/model"
	bookService "book-catalog/internal/domains/book/service"
)

type Handler struct {
	authors authorService.ServiceInterface
	books   bookService.ServiceInterface
}

func NewHandler(authors authorService.ServiceInterface, books bookService.ServiceInterface) *Handler {
	return &Handler{authors: authors, books: books}
}

// RegisterRoutes mounts the HTML pages on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Home)

	authors := r.Group("/authors")
	{
		authors.GET("", h.AuthorList)
		authors.GET("/new", h.AuthorNew)
		authors.POST("/new", h.AuthorCreate)
		authors.GET("/:id", h.AuthorDetail)
		authors.GET("/:id/edit", h.AuthorEdit)
		authors.POST("/:id/edit", h.AuthorUpdate)
		authors.GET("/:id/delete", h.AuthorConfirmDelete)
		authors.POST("/:id/delete", h.AuthorDelete)
	}

	books := r.Group("/books")
	{
		books.GET("", h.BookList)
		books.GET("/new", h.BookNew)
		books.POST("/new", h.BookCreate)
		books.GET("/:id", h.BookDetail)
		books.GET("/:id/edit", h.BookEdit)
		books.POST("/:id/edit", h.BookUpdate)
		books.GET("/:id/delete", h.BookConfirmDelete)
		books.POST("/:id/delete", h.BookDelete)
	}
}

// Home - GET /
func (h *Handler) Home(c *gin.Context) {
	ctx := c.Request.Context()

	authorsCount, err := h.authors.Count(ctx)
	if err != nil {
		h.serverError(c, err)
		return
	}
	booksCount, err := h.books.Count(ctx)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "home.html", gin.H{
		"Title":        "Book catalog",
		"AuthorsCount": authorsCount,
		"BooksCount":   booksCount,
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func isNotFound(err error) bool {
	return errors.Is(err, authorModel.ErrAuthorNotFound) || errors.Is(err, bookModel.ErrBookNotFound)
}

func (h *Handler) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", gin.H{
		"Title":   "Not found",
		"Status":  http.StatusNotFound,
		"Message": "The page you requested does not exist.",
	})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	log.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("path", c.Request.URL.Path).
		Msg("[Web] Request failed")

	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Error",
		"Status":  http.StatusInternalServerError,
		"Message": "Something went wrong. Please try again.",
	})
}

// fail renders 404 for missing records and 500 otherwise.
func (h *Handler) fail(c *gin.Context, err error) {
	if isNotFound(err) {
		h.notFound(c)
		return
	}
	h.serverError(c, err)
}

func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}
