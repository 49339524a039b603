package notes

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("note not found")
)

// InputValidator valida structs con tags `validate`.
type InputValidator interface {
	Validate(v any) error
}

type Service struct {
	repo     Repository
	validate InputValidator
}

func NewService(repo Repository, validate InputValidator) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
	}
}

func (s *Service) List(ctx context.Context) ([]Note, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Note, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Note, error) {
	if s.validate != nil {
		if err := s.validate.Validate(in); err != nil {
			return Note{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	} else if in.Title == "" {
		return Note{}, ErrInvalidInput
	}

	// content vacío se guarda como NULL
	if in.Content != nil && *in.Content == "" {
		in.Content = nil
	}

	return s.repo.Create(ctx, in)
}

// Update sin campos devuelve la nota actual sin tocar updated_at.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Note, error) {
	if in.IsEmpty() {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
