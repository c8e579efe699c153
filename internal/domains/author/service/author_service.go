package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"book-catalog/internal/domains/author/model"
	"book-catalog/internal/domains/author/repository"
	"book-catalog/internal/shared/validate"
)

// authorService implements ServiceInterface
type authorService struct {
	repo      repository.RepositoryInterface
	validator *validate.Validator
}

// NewAuthorService creates a new author service instance
func NewAuthorService(repo repository.RepositoryInterface, validator *validate.Validator) ServiceInterface {
	return &authorService{
		repo:      repo,
		validator: validator,
	}
}

func (s *authorService) Validate(in validate.AuthorInput) error {
	_, err := s.validator.Author(in)
	return err
}

func (s *authorService) Create(ctx context.Context, in validate.AuthorInput) (*model.Author, error) {
	accepted, err := s.validator.Author(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, model.FromValidated(accepted))
	if err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	log.Info().Int64("author_id", created.ID).Str("name", created.Name).Msg("[AuthorService] Author created")
	return created, nil
}

func (s *authorService) GetByID(ctx context.Context, id int64) (*model.Author, error) {
	if id <= 0 {
		return nil, model.ErrAuthorNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) GetWithBooks(ctx context.Context, id int64) (*model.Author, []model.BookSummary, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	books, err := s.repo.ListBooks(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	a.BookCount = len(books)

	return a, books, nil
}

func (s *authorService) List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, error) {
	return s.repo.List(ctx, filter)
}

// Update looks the author up first: a missing author wins over field errors.
func (s *authorService) Update(ctx context.Context, id int64, in validate.AuthorInput) (*model.Author, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	accepted, err := s.validator.Author(in)
	if err != nil {
		return nil, err
	}

	a := model.FromValidated(accepted)
	a.ID = id

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("author_id", id).Msg("[AuthorService] Author updated")
	return updated, nil
}

func (s *authorService) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, model.ErrAuthorNotFound
	}

	deletedBooks, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	log.Info().
		Int64("author_id", id).
		Int64("deleted_books", deletedBooks).
		Msg("[AuthorService] Author deleted with books")
	return deletedBooks, nil
}

func (s *authorService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
