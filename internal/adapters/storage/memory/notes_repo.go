package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"notes-api/internal/domain/notes"
)

type notesRepo struct {
	mu     sync.RWMutex
	byID   map[int64]notes.Note
	nextID int64
	now    func() time.Time
}

// NewNotesRepo crea un repo en memoria (modo dev / tests). Los ids arrancan en 1.
func NewNotesRepo() notes.Repository {
	return newNotesRepo(time.Now)
}

func newNotesRepo(now func() time.Time) *notesRepo {
	return &notesRepo{
		byID: make(map[int64]notes.Note),
		now:  now,
	}
}

func (r *notesRepo) List(ctx context.Context) ([]notes.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notes.Note, 0, len(r.byID))
	for _, n := range r.byID {
		out = append(out, cloneNote(n))
	}

	// created_at desc; a igual timestamp, id desc
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *notesRepo) GetByID(ctx context.Context, id int64) (notes.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byID[id]
	if !ok {
		return notes.Note{}, notes.ErrNotFound
	}
	return cloneNote(n), nil
}

func (r *notesRepo) Create(ctx context.Context, in notes.CreateInput) (notes.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.now()
	n := notes.Note{
		ID:        r.nextID,
		Title:     in.Title,
		Content:   cloneString(in.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[n.ID] = n
	return cloneNote(n), nil
}

func (r *notesRepo) Update(ctx context.Context, id int64, in notes.UpdateInput) (notes.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[id]
	if !ok {
		return notes.Note{}, notes.ErrNotFound
	}
	if in.IsEmpty() {
		return cloneNote(n), nil
	}

	if in.Title != nil {
		n.Title = *in.Title
	}
	if in.Content != nil {
		n.Content = cloneString(in.Content)
	}
	n.UpdatedAt = r.now()

	r.byID[id] = n
	return cloneNote(n), nil
}

func (r *notesRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return notes.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// cloneNote evita que el caller comparta el *string de content con el map.
func cloneNote(n notes.Note) notes.Note {
	n.Content = cloneString(n.Content)
	return n
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
