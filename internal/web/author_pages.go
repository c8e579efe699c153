package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authorModel "book-catalog/internal/domains/author/model"
	"book-catalog/internal/shared/validate"
)

// AuthorList - GET /authors?q=
func (h *Handler) AuthorList(c *gin.Context) {
	query := c.Query("q")
	authors, err := h.authors.List(c.Request.Context(), authorModel.AuthorFilter{Search: query})
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "author_list.html", gin.H{
		"Title":   "Authors",
		"Authors": authors,
		"Query":   query,
	})
}

// AuthorDetail - GET /authors/:id
func (h *Handler) AuthorDetail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	author, books, err := h.authors.GetWithBooks(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "author_detail.html", gin.H{
		"Title":  author.Name,
		"Author": author,
		"Books":  books,
	})
}

func (h *Handler) renderAuthorForm(c *gin.Context, status int, title, action string, form authorForm, errs validate.FieldErrors) {
	c.HTML(status, "author_form.html", gin.H{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": errs.ByField(),
	})
}

// AuthorNew - GET /authors/new
func (h *Handler) AuthorNew(c *gin.Context) {
	h.renderAuthorForm(c, http.StatusOK, "Add author", "/authors/new", authorForm{}, nil)
}

// AuthorCreate - POST /authors/new
func (h *Handler) AuthorCreate(c *gin.Context) {
	form := readAuthorForm(c)
	in, decodeErrs := form.decode()

	var err error
	if len(decodeErrs) > 0 {
		err = h.authors.Validate(in)
	} else {
		_, err = h.authors.Create(c.Request.Context(), in)
	}

	errs, err := mergeFormErrors(decodeErrs, err)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if len(errs) > 0 {
		h.renderAuthorForm(c, http.StatusUnprocessableEntity, "Add author", "/authors/new", form, errs)
		return
	}

	redirectHome(c)
}

// AuthorEdit - GET /authors/:id/edit
func (h *Handler) AuthorEdit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	author, err := h.authors.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.renderAuthorForm(c, http.StatusOK, "Edit author: "+author.Name, c.Request.URL.Path,
		authorFormFrom(author.Name, author.BirthDate, author.Bio), nil)
}

// AuthorUpdate - POST /authors/:id/edit
func (h *Handler) AuthorUpdate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	ctx := c.Request.Context()
	current, err := h.authors.GetByID(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	form := readAuthorForm(c)
	in, decodeErrs := form.decode()

	if len(decodeErrs) > 0 {
		err = h.authors.Validate(in)
	} else {
		_, err = h.authors.Update(ctx, id, in)
	}
	if errors.Is(err, authorModel.ErrAuthorNotFound) {
		h.notFound(c)
		return
	}

	errs, err := mergeFormErrors(decodeErrs, err)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if len(errs) > 0 {
		h.renderAuthorForm(c, http.StatusUnprocessableEntity, "Edit author: "+current.Name, c.Request.URL.Path, form, errs)
		return
	}

	redirectHome(c)
}

// AuthorConfirmDelete - GET /authors/:id/delete
func (h *Handler) AuthorConfirmDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	author, books, err := h.authors.GetWithBooks(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.HTML(http.StatusOK, "confirm_delete.html", gin.H{
		"Title":      "Delete author",
		"ObjectType": "author",
		"Name":       author.Name,
		"Action":     c.Request.URL.Path,
		"CancelURL":  "/authors/" + c.Param("id"),
		"BookCount":  len(books),
	})
}

// AuthorDelete - POST /authors/:id/delete (removes the author's books too)
func (h *Handler) AuthorDelete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.notFound(c)
		return
	}

	if _, err := h.authors.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	redirectHome(c)
}
