package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"notes-api/internal/domain/notes"
)

const noteColumns = `id, title, content, created_at, updated_at`

type NotesRepo struct {
	db *sql.DB
}

func NewNotesRepo(db *sql.DB) *NotesRepo {
	return &NotesRepo{db: db}
}

func (r *NotesRepo) List(ctx context.Context) ([]notes.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := make([]notes.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("list notes: %w", err)
		}
		out = append(out, n)
	}

	return out, rows.Err()
}

func (r *NotesRepo) GetByID(ctx context.Context, id int64) (notes.Note, error) {
	if !validID(id) {
		return notes.Note{}, notes.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE id = $1
	`, id)

	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notes.Note{}, notes.ErrNotFound
		}
		return notes.Note{}, fmt.Errorf("get note %d: %w", id, err)
	}
	return n, nil
}

func (r *NotesRepo) Create(ctx context.Context, in notes.CreateInput) (notes.Note, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO notes (title, content)
		VALUES ($1, $2)
		RETURNING `+noteColumns,
		in.Title,
		toNullString(in.Content),
	)

	n, err := scanNote(row)
	if err != nil {
		return notes.Note{}, fmt.Errorf("create note: %w", err)
	}
	return n, nil
}

// Update arma el SET solo con los campos presentes.
func (r *NotesRepo) Update(ctx context.Context, id int64, in notes.UpdateInput) (notes.Note, error) {
	if in.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	if !validID(id) {
		return notes.Note{}, notes.ErrNotFound
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if in.Title != nil {
		args = append(args, *in.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if in.Content != nil {
		args = append(args, *in.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE notes SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), noteColumns,
	)

	n, err := scanNote(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notes.Note{}, notes.ErrNotFound
		}
		return notes.Note{}, fmt.Errorf("update note %d: %w", id, err)
	}
	return n, nil
}

func (r *NotesRepo) Delete(ctx context.Context, id int64) error {
	if !validID(id) {
		return notes.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notes.ErrNotFound
	}
	return nil
}

// validID: la columna id es SERIAL (int4); fuera de ese rango no puede existir.
func validID(id int64) bool {
	return id >= math.MinInt32 && id <= math.MaxInt32
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (notes.Note, error) {
	var (
		n       notes.Note
		content sql.NullString
	)
	if err := s.Scan(&n.ID, &n.Title, &content, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return notes.Note{}, err
	}
	if content.Valid {
		c := content.String
		n.Content = &c
	}
	return n, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
