package model

import (
	"time"

	"book-catalog/internal/shared/validate"
)

// AuthorRequest - POST /v1/authors, PUT /v1/authors/:id
// Updates replace every field, the same way the edit form does.
type AuthorRequest struct {
	Name      string         `json:"name"`
	BirthDate *validate.Date `json:"birth_date,omitempty"`
	Bio       string         `json:"bio"`
}

// ToInput converts the request into validator input.
func (r *AuthorRequest) ToInput() validate.AuthorInput {
	return validate.AuthorInput{
		Name:      r.Name,
		BirthDate: r.BirthDate.Ptr(),
		Bio:       r.Bio,
	}
}

// AuthorFilter - query parameters for GET /v1/authors
type AuthorFilter struct {
	Search string `json:"search" form:"search"` // partial match on name or bio
}

// AuthorResponse - basic author information
type AuthorResponse struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	BirthDate *validate.Date `json:"birth_date"`
	Bio       string         `json:"bio"`
	BookCount int            `json:"book_count"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BookSummary is the slice of a book shown on the author detail.
type BookSummary struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	PublishedDate validate.Date `json:"published_date"`
	ISBN          string        `json:"isbn"`
	Pages         int           `json:"pages"`
}

// AuthorDetailResponse - author with the books they own
type AuthorDetailResponse struct {
	AuthorResponse
	Books []BookSummary `json:"books"`
}

// DeleteAuthorResponse reports what a cascade delete removed.
type DeleteAuthorResponse struct {
	ID           int64 `json:"id"`
	DeletedBooks int64 `json:"deleted_books"`
}

// ToResponse converts Author entity to AuthorResponse DTO
func (a *Author) ToResponse() *AuthorResponse {
	resp := &AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		BookCount: a.BookCount,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.BirthDate != nil {
		resp.BirthDate = &validate.Date{Time: *a.BirthDate}
	}
	return resp
}

// ToDetailResponse converts Author plus its books into the detail DTO.
func (a *Author) ToDetailResponse(books []BookSummary) *AuthorDetailResponse {
	resp := &AuthorDetailResponse{
		AuthorResponse: *a.ToResponse(),
		Books:          books,
	}
	resp.BookCount = len(books)
	if resp.Books == nil {
		resp.Books = []BookSummary{}
	}
	return resp
}
