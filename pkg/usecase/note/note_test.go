package note_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/repository"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
)

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(newMemStore())
	gt.NoError(t, repo.Hydrate(ctx))
	uc := note.New(repo)

	first, err := uc.Create(ctx, note.CreateOptions{Title: "standup", RawText: "daily sync"})
	gt.NoError(t, err)
	gt.Equal(t, first.Title, "standup")

	second, err := uc.Create(ctx, note.CreateOptions{})
	gt.NoError(t, err)
	gt.Equal(t, second.Title, model.DefaultNoteTitle)

	all, err := uc.List(ctx, note.ListOptions{})
	gt.NoError(t, err)
	gt.A(t, all).Length(2)

	matched, err := uc.List(ctx, note.ListOptions{Query: "DAILY"})
	gt.NoError(t, err)
	gt.A(t, matched).Length(1)
	gt.Equal(t, matched[0].ID, first.ID)
}

func TestUpdateAndAppend(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(newMemStore())
	gt.NoError(t, repo.Hydrate(ctx))
	uc := note.New(repo)

	created, err := uc.Create(ctx, note.CreateOptions{RawText: "first line"})
	gt.NoError(t, err)

	title := "renamed"
	gt.NoError(t, uc.Update(ctx, created.ID, note.UpdateOptions{Title: &title}))
	gt.NoError(t, uc.Append(ctx, created.ID, "second line"))

	shown, err := uc.Show(ctx, created.ID)
	gt.NoError(t, err)
	gt.Equal(t, shown.Title, "renamed")
	gt.Equal(t, shown.RawText, "first line\nsecond line")
}
