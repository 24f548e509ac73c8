package note

import (
	"context"

	"github.com/m-mizutani/minuta/pkg/model"
)

// ListOptions contains options for listing notes
type ListOptions struct {
	// Query filters notes by case-insensitive substring over the body;
	// empty means no filtering
	Query string
}

// List retrieves notes ordered by creation time, most recent first
func (u *UseCase) List(ctx context.Context, opts ListOptions) ([]*model.Note, error) {
	return u.repo.Search(ctx, opts.Query)
}

// Show retrieves a single note by ID
func (u *UseCase) Show(ctx context.Context, id model.NoteID) (*model.Note, error) {
	return u.repo.Get(ctx, id)
}
