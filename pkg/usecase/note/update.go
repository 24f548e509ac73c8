package note

import (
	"context"

	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/repository"
)

// UpdateOptions names the fields to replace; nil fields stay untouched
type UpdateOptions struct {
	Title   *string
	RawText *string
}

// Update applies a shallow merge onto the note. An unknown ID is a
// tolerated no-op.
func (u *UseCase) Update(ctx context.Context, id model.NoteID, opts UpdateOptions) error {
	return u.repo.Update(ctx, id, repository.Patch{
		Title:   opts.Title,
		RawText: opts.RawText,
	})
}

// Append adds text to the end of the note body
func (u *UseCase) Append(ctx context.Context, id model.NoteID, text string) error {
	return u.repo.AppendRawText(ctx, id, text)
}
