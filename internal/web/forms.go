package web

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	bookModel "book-catalog/internal/domains/book/model"
	bookService "book-catalog/internal/domains/book/service"
	"book-catalog/internal/shared/validate"
)

// authorForm holds the raw submitted values so an invalid form can be
// shown again exactly as typed.
type authorForm struct {
	Name      string
	BirthDate string
	Bio       string
}

type bookForm struct {
	Title         string
	AuthorID      string
	PublishedDate string
	ISBN          string
	Pages         string
}

func readAuthorForm(c *gin.Context) authorForm {
	return authorForm{
		Name:      c.PostForm(validate.FieldName),
		BirthDate: c.PostForm(validate.FieldBirthDate),
		Bio:       c.PostForm(validate.FieldBio),
	}
}

// decode converts the form into validator input. Values that cannot be
// decoded are reported as invalid_format and left empty in the input.
func (f authorForm) decode() (validate.AuthorInput, validate.FieldErrors) {
	var errs validate.FieldErrors
	birth, dateErr := validate.ParseDate(validate.FieldBirthDate, f.BirthDate)
	if dateErr != nil {
		errs = append(errs, *dateErr)
	}
	return validate.AuthorInput{Name: f.Name, BirthDate: birth, Bio: f.Bio}, errs
}

func readBookForm(c *gin.Context) bookForm {
	return bookForm{
		Title:         c.PostForm(validate.FieldTitle),
		AuthorID:      c.PostForm(validate.FieldAuthorID),
		PublishedDate: c.PostForm(validate.FieldPublishedDate),
		ISBN:          c.PostForm(validate.FieldISBN),
		Pages:         c.PostForm(validate.FieldPages),
	}
}

func (f bookForm) decode() (validate.BookInput, validate.FieldErrors) {
	var errs validate.FieldErrors
	in := validate.BookInput{Title: f.Title, ISBN: f.ISBN}

	if raw := strings.TrimSpace(f.AuthorID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errs = append(errs, validate.FieldError{
				Field:   validate.FieldAuthorID,
				Kind:    validate.KindInvalidFormat,
				Message: "select a valid author",
			})
		} else {
			in.AuthorID = id
		}
	}

	published, dateErr := validate.ParseDate(validate.FieldPublishedDate, f.PublishedDate)
	if dateErr != nil {
		errs = append(errs, *dateErr)
	}
	in.PublishedDate = published

	if raw := strings.TrimSpace(f.Pages); raw != "" {
		pages, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, validate.FieldError{
				Field:   validate.FieldPages,
				Kind:    validate.KindInvalidFormat,
				Message: "enter a whole number",
			})
		} else {
			in.Pages = &pages
		}
	}

	return in, errs
}

// mergeFormErrors folds a service error into the decode errors. Errors that
// are not about fields are returned unchanged as the second value.
func mergeFormErrors(decodeErrs validate.FieldErrors, err error) (validate.FieldErrors, error) {
	if err == nil {
		return decodeErrs, nil
	}

	var fe validate.FieldErrors
	switch {
	case errors.As(err, &fe):
	case errors.Is(err, bookModel.ErrAuthorNotFound):
		fe = validate.FieldErrors{bookService.AuthorNotFoundError()}
	case errors.Is(err, bookModel.ErrISBNAlreadyExists):
		fe = validate.FieldErrors{bookService.DuplicateISBNError()}
	default:
		return nil, err
	}
	return decodeErrs.Merge(fe), nil
}

func authorFormFrom(name string, birth *time.Time, bio string) authorForm {
	return authorForm{Name: name, BirthDate: validate.FormatDate(birth), Bio: bio}
}

func bookFormFrom(b *bookModel.Book) bookForm {
	return bookForm{
		Title:         b.Title,
		AuthorID:      strconv.FormatInt(b.AuthorID, 10),
		PublishedDate: b.PublishedDateString(),
		ISBN:          b.ISBN,
		Pages:         strconv.Itoa(b.Pages),
	}
}
