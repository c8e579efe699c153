package model

import (
	"time"

	"book-catalog/internal/shared/validate"
)

// Author represents the core Author entity.
// BookCount is only filled by list queries.
type Author struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	BirthDate *time.Time `json:"birth_date" db:"birth_date"`
	Bio       string     `json:"bio" db:"bio"`
	BookCount int        `json:"book_count" db:"-"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// HasBio checks if author has biography
func (a *Author) HasBio() bool {
	return a.Bio != ""
}

// BirthDateString renders the birth date for forms and pages ("" when unknown).
func (a *Author) BirthDateString() string {
	return validate.FormatDate(a.BirthDate)
}

// FromValidated builds an entity from an accepted author.
func FromValidated(v validate.Author) *Author {
	return &Author{
		Name:      v.Name,
		BirthDate: v.BirthDate,
		Bio:       v.Bio,
	}
}
