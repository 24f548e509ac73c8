package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
)

// Sorted returns all notes ordered by creation time, most recent first.
// The view is recomputed on every call; ties keep their insertion order.
func (r *Repository) Sorted(ctx context.Context) ([]*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hydrated {
		return nil, goerr.Wrap(model.ErrNotHydrated, "cannot list notes before hydration")
	}

	notes := make([]*model.Note, len(r.notes))
	for i, note := range r.notes {
		copied := *note
		notes[i] = &copied
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// Search returns the sorted view restricted to notes whose body contains
// the query as a case-insensitive substring. An empty or whitespace-only
// query returns the full sorted view.
func (r *Repository) Search(ctx context.Context, query string) ([]*model.Note, error) {
	notes, err := r.Sorted(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return notes, nil
	}

	needle := strings.ToLower(query)
	matched := make([]*model.Note, 0, len(notes))
	for _, note := range notes {
		if strings.Contains(strings.ToLower(note.RawText), needle) {
			matched = append(matched, note)
		}
	}
	return matched, nil
}
