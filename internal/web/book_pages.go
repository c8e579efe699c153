package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authorModel "book-catalog/internal/domains/author/model"
	bookModel "book-catalog/internal/domains/book/model"
	"book-catalog/internal/shared/validate"
)

// BookList - GET /books?q=&author_id=
func (h *Handler) BookList(c *gin.Context) {
	filter := bookModel.BookFilter{Search: c.Query("q")}
	if raw := c.Query("author_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.AuthorID = id
		}
	}

	books, err := h.books.List(c.Request.Context(), filter)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "book_list.html", gin.H{
		"Title": "Books",
		"Books": books,
		"Query": filter.Search,
	})
}

// BookDetail - GET /books/:id
func (h *Handler) BookDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	book, err := h.books.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "book_detail.html", gin.H{
		"Title": book.Title,
		"Book":  book,
	})
}

func (h *Handler) renderBookForm(c *gin.Context, status int, title, action string, form bookForm, errs validate.FieldErrors) {
	authors, err := h.authors.List(c.Request.Context(), authorModel.AuthorFilter{})
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(status, "book_form.html", gin.H{
		"Title":   title,
		"Action":  action,
		"Form":    form,
		"Authors": authors,
		"Errors":  errs.ByField(),
	})
}

// BookNew - GET /books/new (author_id may preselect the author)
func (h *Handler) BookNew(c *gin.Context) {
	h.renderBookForm(c, http.StatusOK, "Add book", "/books/new", bookForm{AuthorID: c.Query("author_id")}, nil)
}

// BookCreate - POST /books/new
func (h *Handler) BookCreate(c *gin.Context) {
	ctx := c.Request.Context()
	form := readBookForm(c)
	in, decodeErrs := form.decode()

	var err error
	if len(decodeErrs) > 0 {
		err = h.books.Validate(ctx, in)
	} else {
		_, err = h.books.Create(ctx, in)
	}

	errs, err := mergeFormErrors(decodeErrs, err)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if len(errs) > 0 {
		h.renderBookForm(c, http.StatusUnprocessableEntity, "Add book", "/books/new", form, errs)
		return
	}

	redirectHome(c)
}

// BookEdit - GET /books/:id/edit
func (h *Handler) BookEdit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	book, err := h.books.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.renderBookForm(c, http.StatusOK, "Edit book: "+book.Title, c.Request.URL.Path, bookFormFrom(book), nil)
}

// BookUpdate - POST /books/:id/edit
func (h *Handler) BookUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	ctx := c.Request.Context()
	current, err := h.books.GetByID(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	form := readBookForm(c)
	in, decodeErrs := form.decode()

	if len(decodeErrs) > 0 {
		err = h.books.Validate(ctx, in)
	} else {
		_, err = h.books.Update(ctx, id, in)
	}

	errs, err := mergeFormErrors(decodeErrs, err)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(errs) > 0 {
		h.renderBookForm(c, http.StatusUnprocessableEntity, "Edit book: "+current.Title, c.Request.URL.Path, form, errs)
		return
	}

	redirectHome(c)
}

// BookConfirmDelete - GET /books/:id/delete
func (h *Handler) BookConfirmDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	book, err := h.books.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "confirm_delete.html", gin.H{
		"Title":      "Delete book",
		"ObjectType": "book",
		"Name":       book.Title,
		"Action":     c.Request.URL.Path,
		"CancelURL":  "/books/" + c.Param("id"),
	})
}

// BookDelete - POST /books/:id/delete
func (h *Handler) BookDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	if err := h.books.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	redirectHome(c)
}
