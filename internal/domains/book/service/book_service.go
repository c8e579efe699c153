package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/domains/book/repository"
	"book-catalog/internal/shared/validate"
)

type BookService struct {
	repo      repository.RepositoryInterface
	authors   AuthorLookup
	validator *validate.Validator
}

func NewBookService(repo repository.RepositoryInterface, authors AuthorLookup, validator *validate.Validator) ServiceInterface {
	return &BookService{
		repo:      repo,
		authors:   authors,
		validator: validator,
	}
}

// check resolves the author's birth date and runs the book rules.
// A missing author alone is model.ErrAuthorNotFound; together with other
// failures it is reported as a not_found error on author_id.
func (s *BookService) check(ctx context.Context, in validate.BookInput) (validate.Book, error) {
	// Ids are positive; a negative one can never resolve.
	authorMissing := in.AuthorID < 0
	if in.AuthorID > 0 {
		a, err := s.authors.GetByID(ctx, in.AuthorID)
		switch {
		case errors.Is(err, model.ErrAuthorNotFound):
			authorMissing = true
		case err != nil:
			return validate.Book{}, fmt.Errorf("failed to load author: %w", err)
		default:
			in.AuthorBirthDate = a.BirthDate
		}
	}

	accepted, err := s.validator.Book(in)
	if err != nil {
		var fe validate.FieldErrors
		if authorMissing && errors.As(err, &fe) {
			return validate.Book{}, fe.Merge(validate.FieldErrors{AuthorNotFoundError()})
		}
		return validate.Book{}, err
	}
	if authorMissing {
		return validate.Book{}, model.ErrAuthorNotFound
	}
	return accepted, nil
}

// AuthorNotFoundError is the field-level form of model.ErrAuthorNotFound.
func AuthorNotFoundError() validate.FieldError {
	return validate.FieldError{
		Field:   validate.FieldAuthorID,
		Kind:    validate.KindNotFound,
		Message: "selected author does not exist",
	}
}

// DuplicateISBNError is the field-level form of model.ErrISBNAlreadyExists.
func DuplicateISBNError() validate.FieldError {
	return validate.FieldError{
		Field:   validate.FieldISBN,
		Kind:    validate.KindDuplicateKey,
		Message: "a book with this ISBN already exists",
	}
}

func (s *BookService) Validate(ctx context.Context, in validate.BookInput) error {
	_, err := s.check(ctx, in)
	return err
}

func (s *BookService) Create(ctx context.Context, in validate.BookInput) (*model.Book, error) {
	accepted, err := s.check(ctx, in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, model.FromValidated(accepted))
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("book_id", created.ID).
		Int64("author_id", created.AuthorID).
		Str("isbn", created.ISBN).
		Msg("[BookService] Book created")
	return created, nil
}

func (s *BookService) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	if id <= 0 {
		return nil, model.ErrBookNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *BookService) List(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	return s.repo.List(ctx, filter)
}

func (s *BookService) Update(ctx context.Context, id int64, in validate.BookInput) (*model.Book, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	accepted, err := s.check(ctx, in)
	if err != nil {
		return nil, err
	}

	b := model.FromValidated(accepted)
	b.ID = id

	updated, err := s.repo.Update(ctx, b)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("book_id", id).Msg("[BookService] Book updated")
	return updated, nil
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return model.ErrBookNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("book_id", id).Msg("[BookService] Book deleted")
	return nil
}

func (s *BookService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *BookService) ExportBooksToExcel(ctx context.Context, filter model.BookFilter) (*excelize.File, error) {
	books, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	f, err := buildBooksExcelFile(books)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

// ExportSheetName is the sheet written by exports and read first by imports.
const ExportSheetName = "Books"

// exportHeaders match the import columns so an export can be re-imported.
var exportHeaders = []string{
	"id",
	model.ColumnTitle,
	model.ColumnAuthorID,
	model.ColumnAuthorName,
	model.ColumnPublishedDate,
	model.ColumnISBN,
	model.ColumnPages,
}

func buildBooksExcelFile(books []model.Book) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return nil, err
	}

	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(ExportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(ExportSheetName, "A1", last, headerStyle)
	}

	for i, b := range books {
		rowNum := i + 2
		values := []interface{}{
			b.ID,
			b.Title,
			b.AuthorID,
			b.AuthorName,
			b.PublishedDateString(),
			b.ISBN,
			b.Pages,
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(ExportSheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	return f, nil
}
