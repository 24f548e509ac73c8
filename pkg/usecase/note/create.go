package note

import (
	"context"

	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/repository"
)

// CreateOptions contains optional initial fields for a new note
type CreateOptions struct {
	Title   string
	RawText string
}

// Create allocates a new note and returns it
func (u *UseCase) Create(ctx context.Context, opts CreateOptions) (*model.Note, error) {
	return u.repo.Create(ctx, repository.CreateInput{
		Title:   opts.Title,
		RawText: opts.RawText,
	})
}
