package notes

import "time"

// Note es una nota persistida. ID y timestamps los asigna el storage.
type Note struct {
	ID      int64
	Title   string
	Content *string // nullable

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateInput struct {
	Title   string  `json:"title" validate:"required"`
	Content *string `json:"content"`
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (in UpdateInput) IsEmpty() bool {
	return in.Title == nil && in.Content == nil
}
