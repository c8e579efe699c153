package model

import (
	"time"

	"book-catalog/internal/shared/validate"
)

// Book represents the main book entity.
// AuthorName is filled by reads that join authors.
type Book struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	AuthorID      int64     `json:"author_id" db:"author_id"`
	AuthorName    string    `json:"author_name" db:"author_name"`
	PublishedDate time.Time `json:"published_date" db:"published_date"`
	ISBN          string    `json:"isbn" db:"isbn"`
	Pages         int       `json:"pages" db:"pages"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// PublishedDateString renders the publication date for pages and forms.
func (b *Book) PublishedDateString() string {
	return b.PublishedDate.Format(validate.DateLayout)
}

// FromValidated builds an entity from an accepted book.
func FromValidated(v validate.Book) *Book {
	return &Book{
		Title:         v.Title,
		AuthorID:      v.AuthorID,
		PublishedDate: v.PublishedDate,
		ISBN:          v.ISBN,
		Pages:         v.Pages,
	}
}
