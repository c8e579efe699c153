package model

import (
	"time"

	"book-catalog/internal/shared/validate"
)

// BookRequest - POST /v1/books, PUT /v1/books/:id
type BookRequest struct {
	Title         string         `json:"title"`
	AuthorID      int64          `json:"author_id"`
	PublishedDate *validate.Date `json:"published_date"`
	ISBN          string         `json:"isbn"`
	Pages         *int           `json:"pages"`
}

// ToInput converts the request into validator input. The author's birth
// date is supplied by the service after it looks the author up.
func (r *BookRequest) ToInput(authorBirthDate *time.Time) validate.BookInput {
	return validate.BookInput{
		Title:           r.Title,
		AuthorID:        r.AuthorID,
		PublishedDate:   r.PublishedDate.Ptr(),
		ISBN:            r.ISBN,
		Pages:           r.Pages,
		AuthorBirthDate: authorBirthDate,
	}
}

// BookFilter - query parameters for GET /v1/books
type BookFilter struct {
	AuthorID int64  `json:"author_id" form:"author_id"`
	Search   string `json:"search" form:"search"` // title, isbn or author name
}

type BookResponse struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	AuthorID      int64         `json:"author_id"`
	AuthorName    string        `json:"author_name,omitempty"`
	PublishedDate validate.Date `json:"published_date"`
	ISBN          string        `json:"isbn"`
	Pages         int           `json:"pages"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (b *Book) ToResponse() *BookResponse {
	return &BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		AuthorID:      b.AuthorID,
		AuthorName:    b.AuthorName,
		PublishedDate: validate.Date{Time: b.PublishedDate},
		ISBN:          b.ISBN,
		Pages:         b.Pages,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func ToBookResponses(books []Book) []BookResponse {
	result := make([]BookResponse, 0, len(books))
	for i := range books {
		result = append(result, *books[i].ToResponse())
	}
	return result
}
