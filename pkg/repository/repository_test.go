package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/repository"

	"errors"
)

// memStore is an in-memory KVStore for testing
type memStore struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
	getErr error
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func hydrated(t *testing.T, store *memStore) *repository.Repository {
	t.Helper()
	repo := repository.New(store)
	gt.NoError(t, repo.Hydrate(context.Background()))
	return repo
}

func TestReadsBeforeHydration(t *testing.T) {
	ctx := context.Background()
	repo := repository.New(newMemStore())

	_, err := repo.Sorted(ctx)
	gt.True(t, errors.Is(err, model.ErrNotHydrated))

	_, err = repo.Create(ctx, repository.CreateInput{})
	gt.True(t, errors.Is(err, model.ErrNotHydrated))

	gt.False(t, repo.Hydrated())
}

func TestHydrateEmptyStoreIsFirstLaunch(t *testing.T) {
	ctx := context.Background()
	repo := hydrated(t, newMemStore())

	gt.True(t, repo.Hydrated())
	notes, err := repo.Sorted(ctx)
	gt.NoError(t, err)
	gt.A(t, notes).Length(0)
}

func TestHydrateCorruptBlobIsNotEmpty(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.values["meeting-notes:v1"] = "{not json"

	repo := repository.New(store)
	gt.Error(t, repo.Hydrate(ctx))

	// A parse failure must stay distinguishable from first launch
	gt.False(t, repo.Hydrated())
	_, err := repo.Sorted(ctx)
	gt.True(t, errors.Is(err, model.ErrNotHydrated))
}

func TestHydrateIdempotentOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	repo := hydrated(t, store)

	_, err := repo.Create(ctx, repository.CreateInput{Title: "kept"})
	gt.NoError(t, err)

	// A second hydrate must not reload and wipe in-memory state
	gt.NoError(t, repo.Hydrate(ctx))
	notes, err := repo.Sorted(ctx)
	gt.NoError(t, err)
	gt.A(t, notes).Length(1)
}

func TestCreateOrderingAndUniqueness(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := repository.New(newMemStore(), repository.WithNow(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	gt.NoError(t, repo.Hydrate(ctx))

	var ids []model.NoteID
	for _, title := range []string{"first", "second", "third"} {
		note, err := repo.Create(ctx, repository.CreateInput{Title: title})
		gt.NoError(t, err)
		ids = append(ids, note.ID)
	}

	notes, err := repo.Sorted(ctx)
	gt.NoError(t, err)
	gt.A(t, notes).Length(3)
	gt.Equal(t, notes[0].Title, "third")
	gt.Equal(t, notes[1].Title, "second")
	gt.Equal(t, notes[2].Title, "first")

	// Every created note present exactly once
	seen := map[model.NoteID]int{}
	for _, note := range notes {
		seen[note.ID]++
	}
	for _, id := range ids {
		gt.Equal(t, seen[id], 1)
	}
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	repo := hydrated(t, newMemStore())

	note, err := repo.Create(ctx, repository.CreateInput{})
	gt.NoError(t, err)
	gt.Equal(t, note.Title, "New meeting")
	gt.Equal(t, note.RawText, "")
	gt.S(t, string(note.ID)).NotEqual("")
}

func TestUpdateUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := hydrated(t, newMemStore())

	_, err := repo.Create(ctx, repository.CreateInput{Title: "keep me", RawText: "body"})
	gt.NoError(t, err)
	before, err := repo.Sorted(ctx)
	gt.NoError(t, err)

	title := "hijacked"
	gt.NoError(t, repo.Update(ctx, model.NoteID("no-such-id"), repository.Patch{Title: &title}))

	after, err := repo.Sorted(ctx)
	gt.NoError(t, err)
	gt.Equal(t, after, before)
}

func TestUpdateShallowMerge(t *testing.T) {
	ctx := context.Background()
	repo := hydrated(t, newMemStore())

	note, err := repo.Create(ctx, repository.CreateInput{Title: "planning", RawText: "agenda"})
	gt.NoError(t, err)

	text := "agenda\nbudget"
	gt.NoError(t, repo.Update(ctx, note.ID, repository.Patch{RawText: &text}))

	got, err := repo.Get(ctx, note.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Title, "planning")
	gt.Equal(t, got.RawText, "agenda\nbudget")
	gt.Equal(t, got.CreatedAt, note.CreatedAt)
}

func TestSetStructuredReplaces(t *testing.T) {
	ctx := context.Background()
	repo := hydrated(t, newMemStore())

	note, err := repo.Create(ctx, repository.CreateInput{RawText: "discussed things"})
	gt.NoError(t, err)

	first := &model.StructuredMeeting{Participants: []string{"a"}, KeyPoints: []string{"old"}}
	gt.NoError(t, repo.SetStructured(ctx, note.ID, model.TemplateStandard, first))

	second := &model.StructuredMeeting{Participants: []string{"b"}, KeyPoints: []string{"new"}}
	gt.NoError(t, repo.SetStructured(ctx, note.ID, model.TemplateOneOnOne, second))

	got, err := repo.Get(ctx, note.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.TemplateID, model.TemplateOneOnOne)
	gt.Equal(t, got.Structured, second)
}

func TestAppendRawText(t *testing.T) {
	ctx := context.Background()
	repo := hydrated(t, newMemStore())

	note, err := repo.Create(ctx, repository.CreateInput{})
	gt.NoError(t, err)

	gt.NoError(t, repo.AppendRawText(ctx, note.ID, "first line"))
	gt.NoError(t, repo.AppendRawText(ctx, note.ID, "second line"))

	got, err := repo.Get(ctx, note.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.RawText, "first line\nsecond line")
}

func TestGetUnknownID(t *testing.T) {
	ctx := context.Background()
	repo := hydrated(t, newMemStore())

	_, err := repo.Get(ctx, model.NoteID("missing"))
	gt.True(t, errors.Is(err, model.ErrNoteNotFound))
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	repo := hydrated(t, store)

	note, err := repo.Create(ctx, repository.CreateInput{Title: "retro", RawText: "went well"})
	gt.NoError(t, err)
	gt.NoError(t, repo.SetStructured(ctx, note.ID, model.TemplateStandard, &model.StructuredMeeting{
		Participants: []string{"ann", "bo"},
		KeyPoints:    []string{"velocity up"},
		Todos:        []model.Todo{{Text: "book room", Owner: "bo"}},
		Decisions:    []string{"keep cadence"},
	}))

	// Transient dictation state present before the restart
	staged := "uncommitted words"
	gt.NoError(t, repo.Update(ctx, note.ID, repository.Patch{
		DictationText:  &staged,
		LastTranscript: &staged,
	}))
	gt.NoError(t, repo.Flush(ctx))

	// Rehydrate from the persisted blob into a fresh repository
	restored := repository.New(store)
	gt.NoError(t, restored.Hydrate(ctx))

	got, err := restored.Get(ctx, note.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Title, "retro")
	gt.Equal(t, got.RawText, "went well")
	gt.Equal(t, got.TemplateID, model.TemplateStandard)
	gt.V(t, got.Structured).NotNil()
	gt.Equal(t, got.Structured.Participants, []string{"ann", "bo"})
	gt.Equal(t, got.Structured.Todos[0].Owner, "bo")
	gt.True(t, got.CreatedAt.Equal(note.CreatedAt))

	// Dictation fields are session-scoped and must not survive
	gt.Equal(t, got.DictationText, "")
	gt.Equal(t, got.LastTranscript, "")
}

func TestPersistSerializesCurrentState(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	repo := hydrated(t, store)

	// Two rapid mutations; both persists must carry the full state
	_, err := repo.Create(ctx, repository.CreateInput{Title: "one"})
	gt.NoError(t, err)
	_, err = repo.Create(ctx, repository.CreateInput{Title: "two"})
	gt.NoError(t, err)
	gt.NoError(t, repo.Flush(ctx))

	blob := store.value("meeting-notes:v1")
	gt.S(t, blob).Contains("one")
	gt.S(t, blob).Contains("two")
}

func TestPersistFailureDoesNotBlockMutations(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.setErr = goerr.New("disk full")
	repo := hydrated(t, store)

	note, err := repo.Create(ctx, repository.CreateInput{Title: "still here"})
	gt.NoError(t, err)
	gt.NoError(t, repo.Flush(ctx))

	// In-memory state is intact even though every persist failed
	got, err := repo.Get(ctx, note.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Title, "still here")
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	repo := hydrated(t, newMemStore())

	events, cancel := repo.Subscribe()
	defer cancel()

	note, err := repo.Create(ctx, repository.CreateInput{})
	gt.NoError(t, err)
	gt.NoError(t, repo.AppendRawText(ctx, note.ID, "hi"))

	ev := <-events
	gt.Equal(t, ev.Op, repository.OpCreate)
	gt.Equal(t, ev.NoteID, note.ID)

	ev = <-events
	gt.Equal(t, ev.Op, repository.OpUpdate)

	// After cancel the channel is closed and mutations do not panic
	cancel()
	_, err = repo.Create(ctx, repository.CreateInput{})
	gt.NoError(t, err)
}
