// Package validate holds the field and cross-field rules for authors and books.
// Every function here is pure: "today" comes from the Validator's clock.
package validate

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field names as they appear in forms, JSON bodies and error reports.
const (
	FieldName          = "name"
	FieldBirthDate     = "birth_date"
	FieldBio           = "bio"
	FieldTitle         = "title"
	FieldAuthorID      = "author_id"
	FieldPublishedDate = "published_date"
	FieldISBN          = "isbn"
	FieldPages         = "pages"
)

const (
	MinNameLength  = 2
	MaxNameLength  = 100
	MaxTitleLength = 200
	ISBNLength     = 13
	MinPages       = 1
	MaxPages       = 10000
)

// AuthorInput is a candidate author as submitted.
type AuthorInput struct {
	Name      string
	BirthDate *time.Time
	Bio       string
}

// Author is an accepted, normalized author.
type Author struct {
	Name      string
	BirthDate *time.Time
	Bio       string
}

// BookInput is a candidate book plus the stored birth date of its author,
// when the author is known and has one.
type BookInput struct {
	Title           string
	AuthorID        int64
	PublishedDate   *time.Time
	ISBN            string
	Pages           *int
	AuthorBirthDate *time.Time
}

// Book is an accepted, normalized book. ISBN holds 13 digits.
type Book struct {
	Title         string
	AuthorID      int64
	PublishedDate time.Time
	ISBN          string
	Pages         int
}

// Validator applies the catalog rules against its clock.
type Validator struct {
	now func() time.Time
}

// New returns a Validator using the wall clock.
func New() *Validator {
	return &Validator{now: time.Now}
}

// NewWithClock returns a Validator whose "today" is derived from now.
func NewWithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

func (v *Validator) today() time.Time {
	return DateOf(v.now())
}

var authorFieldOrder = []string{FieldName, FieldBirthDate}

// Author checks a candidate author. On failure the error is FieldErrors.
func (v *Validator) Author(in AuthorInput) (Author, error) {
	name := strings.TrimSpace(in.Name)
	birth := dateOnly(in.BirthDate)
	today := v.today()

	errs := validation.Errors{
		FieldName: validation.Validate(name,
			validation.Required.ErrorObject(newError(KindEmptyField, "author name cannot be empty")),
			validation.By(lettersSpacesHyphens),
			validation.RuneLength(MinNameLength, 0).ErrorObject(newError(KindTooShort, "author name is too short")),
			validation.RuneLength(0, MaxNameLength).ErrorObject(newError(KindTooLong, "author name must be at most 100 characters")),
		),
		FieldBirthDate: validation.Validate(birth,
			validation.By(notAfter(today, "birth date cannot be in the future")),
		),
	}

	if err := collect(errs, authorFieldOrder).OrNil(); err != nil {
		return Author{}, err
	}

	return Author{
		Name:      name,
		BirthDate: birth,
		Bio:       strings.TrimSpace(in.Bio),
	}, nil
}

var bookFieldOrder = []string{FieldTitle, FieldAuthorID, FieldPublishedDate, FieldISBN, FieldPages}

// Book checks a candidate book. The ISBN is normalized by stripping hyphens;
// uniqueness is left to the repository.
func (v *Validator) Book(in BookInput) (Book, error) {
	title := strings.TrimSpace(in.Title)
	published := dateOnly(in.PublishedDate)
	rawISBN := strings.TrimSpace(in.ISBN)
	isbn := NormalizeISBN(rawISBN)
	today := v.today()

	errs := validation.Errors{
		FieldTitle: validation.Validate(title,
			validation.Required.ErrorObject(newError(KindEmptyField, "title cannot be empty")),
			validation.RuneLength(0, MaxTitleLength).ErrorObject(newError(KindTooLong, "title must be at most 200 characters")),
		),
		FieldAuthorID: validation.Validate(in.AuthorID,
			validation.Required.ErrorObject(newError(KindMissingValue, "author is required")),
		),
		FieldPublishedDate: validation.Validate(published,
			validation.NotNil.ErrorObject(newError(KindMissingValue, "published date cannot be empty")),
			validation.By(notAfter(today, "published date cannot be in the future")),
		),
		FieldISBN: validation.Validate(rawISBN,
			validation.Required.ErrorObject(newError(KindEmptyField, "ISBN cannot be empty")),
			validation.By(isbnDigits(isbn)),
		),
		FieldPages: validation.Validate(in.Pages,
			validation.NotNil.ErrorObject(newError(KindMissingValue, "number of pages cannot be empty")),
			validation.By(pagesInRange),
		),
	}

	fe := collect(errs, bookFieldOrder)

	// Cross-field rule only runs once published_date passed its own checks.
	birth := dateOnly(in.AuthorBirthDate)
	if birth != nil && published != nil && !fe.Has(FieldPublishedDate) && published.Before(*birth) {
		fe = append(fe, FieldError{
			Field:   FieldPublishedDate,
			Kind:    KindInconsistentDates,
			Message: "book cannot be published before the author was born",
		})
	}

	if err := fe.OrNil(); err != nil {
		return Book{}, err
	}

	return Book{
		Title:         title,
		AuthorID:      in.AuthorID,
		PublishedDate: *published,
		ISBN:          isbn,
		Pages:         *in.Pages,
	}, nil
}

// NormalizeISBN strips hyphens and surrounding spaces.
func NormalizeISBN(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), "-", "")
}

func lettersSpacesHyphens(value interface{}) error {
	s, _ := value.(string)
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) && r != '-' {
			return newError(KindInvalidFormat, "name may contain only letters, spaces and hyphens")
		}
	}
	return nil
}

func notAfter(today time.Time, message string) validation.RuleFunc {
	return func(value interface{}) error {
		t, _ := value.(*time.Time)
		if t != nil && t.After(today) {
			return newError(KindFutureDate, message)
		}
		return nil
	}
}

func isbnDigits(stripped string) validation.RuleFunc {
	return func(interface{}) error {
		if utf8.RuneCountInString(stripped) != ISBNLength {
			return newError(KindInvalidLength, "ISBN must contain 13 digits")
		}
		for _, r := range stripped {
			if r < '0' || r > '9' {
				return newError(KindInvalidFormat, "ISBN must contain only digits")
			}
		}
		return nil
	}
}

func pagesInRange(value interface{}) error {
	p, _ := value.(*int)
	if p == nil {
		return nil
	}
	if *p < MinPages {
		return newError(KindOutOfRange, "number of pages must be a positive number")
	}
	if *p > MaxPages {
		return newError(KindOutOfRange, "number of pages must be at most 10000")
	}
	return nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}
