package model

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"book-catalog/internal/shared/validate"
)

// Supported import file extensions
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// ImportFile describes an uploaded file before it is parsed.
type ImportFile struct {
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	MaxSize int64  `json:"-"`
}

// Validate checks the upload is a non-empty CSV or XLSX within MaxSize.
func (f ImportFile) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name,
			validation.Required.Error("file name is required"),
			validation.By(supportedExtension),
		),
		validation.Field(&f.Size,
			validation.Required.Error("file is empty"),
			validation.Max(f.MaxSize).Error("file is too large"),
		),
	)
}

func supportedExtension(value interface{}) error {
	name, _ := value.(string)
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtCSV, ExtXLSX:
		return nil
	}
	return validation.NewError("unsupported_file", "only .csv and .xlsx files are supported")
}

// Import column names. author_id and author_name are alternatives;
// author_id wins when both are filled.
const (
	ColumnTitle         = "title"
	ColumnAuthorID      = "author_id"
	ColumnAuthorName    = "author_name"
	ColumnPublishedDate = "published_date"
	ColumnISBN          = "isbn"
	ColumnPages         = "pages"
)

// RequiredImportColumns must all be present in the header row.
var RequiredImportColumns = []string{ColumnTitle, ColumnPublishedDate, ColumnISBN, ColumnPages}

// ImportRow is one raw data row. Row is the 1-based line in the file,
// counting the header.
type ImportRow struct {
	Row           int    `json:"row"`
	Title         string `json:"title"`
	AuthorID      string `json:"author_id,omitempty"`
	AuthorName    string `json:"author_name,omitempty"`
	PublishedDate string `json:"published_date"`
	ISBN          string `json:"isbn"`
	Pages         string `json:"pages"`
}

// RowError lists the field failures of one row.
type RowError struct {
	Row    int                  `json:"row"`
	Errors validate.FieldErrors `json:"errors"`
}

// ImportResult is the response of an accepted import.
type ImportResult struct {
	FileName     string         `json:"file_name"`
	TotalRows    int            `json:"total_rows"`
	CreatedBooks []BookResponse `json:"created_books"`
}
