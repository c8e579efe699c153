package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	authorModel "book-catalog/internal/domains/author/model"
	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/domains/book/repository"
	"book-catalog/internal/shared/validate"
)

type bulkImportService struct {
	bookRepo  repository.RepositoryInterface
	authors   AuthorLookup
	validator *validate.Validator
	maxRows   int
}

// NewBulkImportService creates a new bulk import service
func NewBulkImportService(
	bookRepo repository.RepositoryInterface,
	authors AuthorLookup,
	validator *validate.Validator,
	maxRows int,
) BulkImportServiceInterface {
	return &bulkImportService{
		bookRepo:  bookRepo,
		authors:   authors,
		validator: validator,
		maxRows:   maxRows,
	}
}

// ImportBooks is the entry point: parse, validate every row, then insert
// all rows in a single transaction.
func (s *bulkImportService) ImportBooks(ctx context.Context, fileName string, src io.Reader) (*model.ImportResult, error) {
	log.Info().Str("file_name", fileName).Msg("[BulkImport] Starting import")

	// PHASE 1: parse
	records, err := readRecords(fileName, src)
	if err != nil {
		return nil, err
	}
	rows, err := parseRows(records)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.ErrImportEmptyFile
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", model.ErrImportTooManyRows, len(rows), s.maxRows)
	}

	// PHASE 2: validate all rows, nothing is written yet
	books, rowErrors, err := s.validateAllRows(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(rowErrors) > 0 {
		log.Warn().
			Str("file_name", fileName).
			Int("failed_rows", len(rowErrors)).
			Msg("[BulkImport] Validation failed")
		return nil, &model.ImportError{Rows: rowErrors}
	}

	// PHASE 3: insert in one transaction
	created, err := s.bookRepo.CreateMany(ctx, books)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{
		FileName:     fileName,
		TotalRows:    len(rows),
		CreatedBooks: make([]model.BookResponse, 0, len(created)),
	}
	for _, b := range created {
		result.CreatedBooks = append(result.CreatedBooks, *b.ToResponse())
	}

	log.Info().
		Str("file_name", fileName).
		Int("created", len(created)).
		Msg("[BulkImport] Import completed")
	return result, nil
}

// sheetRecord is one non-empty input line with its 1-based line number.
type sheetRecord struct {
	line  int
	cells []string
}

// readRecords returns the raw cells of a CSV file or the first XLSX sheet.
func readRecords(fileName string, src io.Reader) ([]sheetRecord, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case model.ExtCSV:
		reader := csv.NewReader(src)
		reader.TrimLeadingSpace = true
		reader.FieldsPerRecord = -1

		var records []sheetRecord
		for {
			cells, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read CSV: %w", err)
			}
			line, _ := reader.FieldPos(0)
			records = append(records, sheetRecord{line: line, cells: cells})
		}
		return records, nil

	case model.ExtXLSX:
		f, err := excelize.OpenReader(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open XLSX: %w", err)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, model.ErrImportEmptyFile
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read XLSX sheet %q: %w", sheets[0], err)
		}

		records := make([]sheetRecord, 0, len(rows))
		for i, cells := range rows {
			if len(cells) == 0 {
				continue
			}
			records = append(records, sheetRecord{line: i + 1, cells: cells})
		}
		return records, nil
	}

	return nil, model.ErrImportUnsupported
}

// buildColumnIndexMap maps lower-cased header names to their index
func buildColumnIndexMap(header []string) map[string]int {
	colMap := make(map[string]int, len(header))
	for i, colName := range header {
		colName = strings.TrimPrefix(colName, "\ufeff")
		colMap[strings.TrimSpace(strings.ToLower(colName))] = i
	}
	return colMap
}

// parseRows turns the records after the header into ImportRows.
// Blank lines are skipped; Row keeps the line number in the file.
func parseRows(records []sheetRecord) ([]model.ImportRow, error) {
	if len(records) == 0 {
		return nil, model.ErrImportEmptyFile
	}

	colMap := buildColumnIndexMap(records[0].cells)
	var missing []string
	for _, col := range model.RequiredImportColumns {
		if _, ok := colMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	_, hasID := colMap[model.ColumnAuthorID]
	_, hasName := colMap[model.ColumnAuthorName]
	if !hasID && !hasName {
		missing = append(missing, model.ColumnAuthorID+"|"+model.ColumnAuthorName)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrImportMissingHeader, strings.Join(missing, ", "))
	}

	rows := make([]model.ImportRow, 0, len(records)-1)
	for _, record := range records[1:] {
		getCol := func(name string) string {
			if idx, ok := colMap[name]; ok && idx < len(record.cells) {
				return strings.TrimSpace(record.cells[idx])
			}
			return ""
		}

		row := model.ImportRow{
			Row:           record.line,
			Title:         getCol(model.ColumnTitle),
			AuthorID:      getCol(model.ColumnAuthorID),
			AuthorName:    getCol(model.ColumnAuthorName),
			PublishedDate: getCol(model.ColumnPublishedDate),
			ISBN:          getCol(model.ColumnISBN),
			Pages:         getCol(model.ColumnPages),
		}
		if row == (model.ImportRow{Row: row.Row}) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// validateAllRows checks every row; ISBNs must be unique within the file
// and against stored books.
func (s *bulkImportService) validateAllRows(ctx context.Context, rows []model.ImportRow) ([]*model.Book, []model.RowError, error) {
	var (
		books     = make([]*model.Book, 0, len(rows))
		rowErrors []model.RowError
		seen      = make(map[string]int, len(rows))
		authors   = newAuthorCache(s.authors)
	)

	for _, row := range rows {
		accepted, fieldErrs, err := s.validateRow(ctx, row, authors)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", row.Row, err)
		}

		if !fieldErrs.Has(validate.FieldISBN) {
			isbn := validate.NormalizeISBN(row.ISBN)
			if first, dup := seen[isbn]; dup {
				fieldErrs = append(fieldErrs, validate.FieldError{
					Field:   validate.FieldISBN,
					Kind:    validate.KindDuplicateKey,
					Message: fmt.Sprintf("ISBN repeats row %d", first),
				})
			} else {
				seen[isbn] = row.Row
				exists, err := s.bookRepo.ISBNExists(ctx, isbn, 0)
				if err != nil {
					return nil, nil, err
				}
				if exists {
					fieldErrs = append(fieldErrs, DuplicateISBNError())
				}
			}
		}

		if len(fieldErrs) > 0 {
			rowErrors = append(rowErrors, model.RowError{Row: row.Row, Errors: fieldErrs})
			continue
		}
		books = append(books, model.FromValidated(accepted))
	}

	return books, rowErrors, nil
}

func (s *bulkImportService) validateRow(ctx context.Context, row model.ImportRow, authors *authorCache) (validate.Book, validate.FieldErrors, error) {
	var decodeErrs validate.FieldErrors
	in := validate.BookInput{
		Title: row.Title,
		ISBN:  row.ISBN,
	}

	published, dateErr := validate.ParseDate(validate.FieldPublishedDate, row.PublishedDate)
	if dateErr != nil {
		decodeErrs = append(decodeErrs, *dateErr)
	}
	in.PublishedDate = published

	if row.Pages != "" {
		pages, err := strconv.Atoi(row.Pages)
		if err != nil {
			decodeErrs = append(decodeErrs, validate.FieldError{
				Field:   validate.FieldPages,
				Kind:    validate.KindInvalidFormat,
				Message: "number of pages must be a whole number",
			})
		} else {
			in.Pages = &pages
		}
	}

	a, authorErr, err := authors.resolve(ctx, row)
	if err != nil {
		return validate.Book{}, nil, err
	}
	if authorErr != nil {
		decodeErrs = append(decodeErrs, *authorErr)
	}
	if a != nil {
		in.AuthorID = a.ID
		in.AuthorBirthDate = a.BirthDate
	}

	accepted, err := s.validator.Book(in)
	if err != nil {
		var fe validate.FieldErrors
		if !errors.As(err, &fe) {
			return validate.Book{}, nil, err
		}
		return validate.Book{}, decodeErrs.Merge(fe), nil
	}
	if len(decodeErrs) > 0 {
		return validate.Book{}, decodeErrs, nil
	}
	return accepted, nil, nil
}

// authorCache memoizes author lookups for the duration of one import.
type authorCache struct {
	lookup AuthorLookup
	byID   map[int64]*authorModel.Author
	byName map[string]*authorModel.Author
}

func newAuthorCache(lookup AuthorLookup) *authorCache {
	return &authorCache{
		lookup: lookup,
		byID:   make(map[int64]*authorModel.Author),
		byName: make(map[string]*authorModel.Author),
	}
}

// resolve finds the row's author by author_id, falling back to author_name.
// A nil author with a nil field error means neither column was filled.
func (c *authorCache) resolve(ctx context.Context, row model.ImportRow) (*authorModel.Author, *validate.FieldError, error) {
	switch {
	case row.AuthorID != "":
		id, err := strconv.ParseInt(row.AuthorID, 10, 64)
		if err != nil || id <= 0 {
			return nil, &validate.FieldError{
				Field:   validate.FieldAuthorID,
				Kind:    validate.KindInvalidFormat,
				Message: "author id must be a positive whole number",
			}, nil
		}
		if a, ok := c.byID[id]; ok {
			return a, nil, nil
		}
		a, err := c.lookup.GetByID(ctx, id)
		return c.remember(a, err, func(a *authorModel.Author) { c.byID[id] = a })

	case row.AuthorName != "":
		key := strings.ToLower(row.AuthorName)
		if a, ok := c.byName[key]; ok {
			return a, nil, nil
		}
		a, err := c.lookup.FindByName(ctx, row.AuthorName)
		return c.remember(a, err, func(a *authorModel.Author) { c.byName[key] = a })
	}
	return nil, nil, nil
}

func (c *authorCache) remember(a *authorModel.Author, err error, store func(*authorModel.Author)) (*authorModel.Author, *validate.FieldError, error) {
	if errors.Is(err, authorModel.ErrAuthorNotFound) {
		fe := AuthorNotFoundError()
		return nil, &fe, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load author: %w", err)
	}
	store(a)
	return a, nil, nil
}
