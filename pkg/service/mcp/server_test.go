package mcp

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/repository"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memStore) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *repository.Repository) {
	t.Helper()
	repo := repository.New(newMemStore())
	gt.NoError(t, repo.Hydrate(context.Background()))
	return NewServer(note.New(repo), "test"), repo
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	gt.A(t, result.Content).Length(1)
	content, ok := result.Content[0].(*mcp.TextContent)
	gt.True(t, ok)
	return content.Text
}

func TestListNotesTool(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestServer(t)

	result, _, err := s.listNotes(ctx, nil, &listNotesParams{})
	gt.NoError(t, err)
	gt.Equal(t, textOf(t, result), "No notes found")

	_, err = repo.Create(ctx, repository.CreateInput{Title: "planning", RawText: "roadmap review"})
	gt.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateInput{Title: "retro", RawText: "what went well"})
	gt.NoError(t, err)

	result, _, err = s.listNotes(ctx, nil, &listNotesParams{})
	gt.NoError(t, err)
	gt.S(t, textOf(t, result)).Contains("Found 2 notes")

	result, _, err = s.listNotes(ctx, nil, &listNotesParams{Query: "ROADMAP"})
	gt.NoError(t, err)
	text := textOf(t, result)
	gt.S(t, text).Contains("planning")
	gt.S(t, text).NotContains("retro")
}

func TestGetNoteTool(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestServer(t)

	created, err := repo.Create(ctx, repository.CreateInput{Title: "kickoff", RawText: "agenda items"})
	gt.NoError(t, err)
	gt.NoError(t, repo.SetStructured(ctx, created.ID, model.TemplateStandard, &model.StructuredMeeting{
		Participants: []string{"ann", "bob"},
		KeyPoints:    []string{"launch slipped"},
		Todos:        []model.Todo{{Text: "update the plan", Owner: "bob"}},
	}))

	result, _, err := s.getNote(ctx, nil, &getNoteParams{ID: string(created.ID)})
	gt.NoError(t, err)
	text := textOf(t, result)
	gt.S(t, text).Contains("# kickoff")
	gt.S(t, text).Contains("agenda items")
	gt.S(t, text).Contains("ann, bob")
	gt.S(t, text).Contains("• update the plan (owner: bob)")

	_, _, err = s.getNote(ctx, nil, &getNoteParams{ID: "missing"})
	gt.Error(t, err)
}

func TestCreateAndAppendTools(t *testing.T) {
	ctx := context.Background()
	s, repo := newTestServer(t)

	result, _, err := s.createNote(ctx, nil, &createNoteParams{Text: "opening line"})
	gt.NoError(t, err)
	gt.S(t, textOf(t, result)).Contains(model.DefaultNoteTitle)

	notes, err := repo.Sorted(ctx)
	gt.NoError(t, err)
	gt.A(t, notes).Length(1)
	id := notes[0].ID

	_, _, err = s.appendNote(ctx, nil, &appendNoteParams{ID: string(id), Text: "next line"})
	gt.NoError(t, err)

	stored, err := repo.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, stored.RawText, "opening line\nnext line")

	_, _, err = s.appendNote(ctx, nil, &appendNoteParams{ID: string(id), Text: ""})
	gt.Error(t, err)
	_, _, err = s.appendNote(ctx, nil, &appendNoteParams{ID: "missing", Text: "x"})
	gt.Error(t, err)
}
