package notes

import "context"

type Repository interface {
	// List devuelve las notas ordenadas por created_at desc.
	List(ctx context.Context) ([]Note, error)
	GetByID(ctx context.Context, id int64) (Note, error)
	Create(ctx context.Context, in CreateInput) (Note, error)
	// Update aplica solo los campos presentes y actualiza updated_at.
	Update(ctx context.Context, id int64, in UpdateInput) (Note, error)
	Delete(ctx context.Context, id int64) error
}
