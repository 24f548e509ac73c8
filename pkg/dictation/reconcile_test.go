package dictation_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/minuta/pkg/adapter"
	"github.com/m-mizutani/minuta/pkg/dictation"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/repository"
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

func newNote(t *testing.T, rawText string) (*repository.Repository, model.NoteID) {
	t.Helper()
	repo := repository.New(newMemStore())
	gt.NoError(t, repo.Hydrate(context.Background()))
	note, err := repo.Create(context.Background(), repository.CreateInput{RawText: rawText})
	gt.NoError(t, err)
	return repo, note.ID
}

func TestMergeCumulativeDelta(t *testing.T) {
	raw, last := dictation.MergeCumulative("hello world", "hello world", "hello world today")
	gt.Equal(t, raw, "hello world today")
	gt.Equal(t, last, "hello world today")
}

func TestMergeCumulativeFirstCallback(t *testing.T) {
	// The first callback only records; nothing flashes into the body
	raw, last := dictation.MergeCumulative("Agenda:", "", "hel")
	gt.Equal(t, raw, "Agenda:")
	gt.Equal(t, last, "hel")
}

func TestMergeCumulativeRestart(t *testing.T) {
	raw, last := dictation.MergeCumulative("hello", "hello", "goodbye now")
	gt.Equal(t, raw, "hello\ngoodbye now")
	gt.Equal(t, last, "goodbye now")
}

func TestMergeCumulativeTable(t *testing.T) {
	testCases := []struct {
		name     string
		rawText  string
		prev     string
		next     string
		wantRaw  string
		wantLast string
	}{
		{
			name:     "delta into empty body",
			rawText:  "",
			prev:     "hi",
			next:     "hi there",
			wantRaw:  "there",
			wantLast: "hi there",
		},
		{
			name:     "no new words",
			rawText:  "body",
			prev:     "same",
			next:     "same",
			wantRaw:  "body",
			wantLast: "same",
		},
		{
			name:     "body ending in newline gets no extra space",
			rawText:  "line one\n",
			prev:     "more",
			next:     "more words",
			wantRaw:  "line one\nwords",
			wantLast: "more words",
		},
		{
			name:     "restart into empty body",
			rawText:  "",
			prev:     "alpha",
			next:     "beta",
			wantRaw:  "beta",
			wantLast: "beta",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, last := dictation.MergeCumulative(tc.rawText, tc.prev, tc.next)
			gt.Equal(t, raw, tc.wantRaw)
			gt.Equal(t, last, tc.wantLast)
		})
	}
}

func TestStagedCommit(t *testing.T) {
	ctx := context.Background()
	repo, id := newNote(t, "Agenda:")
	rec := dictation.NewReconciler(repo)

	gt.NoError(t, rec.Stage(ctx, id, "discuss budget", adapter.DeliveryChunk))
	gt.NoError(t, rec.Commit(ctx, id))

	note, err := repo.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, note.RawText, "Agenda:\ndiscuss budget")
	gt.Equal(t, note.DictationText, "")

	// Committing again with nothing staged leaves the body unchanged
	gt.NoError(t, rec.Commit(ctx, id))
	note, err = repo.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, note.RawText, "Agenda:\ndiscuss budget")
}

func TestStagedCommitIntoEmptyBody(t *testing.T) {
	ctx := context.Background()
	repo, id := newNote(t, "")
	rec := dictation.NewReconciler(repo)

	gt.NoError(t, rec.Stage(ctx, id, "first words", adapter.DeliveryChunk))
	gt.NoError(t, rec.Commit(ctx, id))

	note, err := repo.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, note.RawText, "first words")
}

func TestStagedCommitWhitespaceOnly(t *testing.T) {
	ctx := context.Background()
	repo, id := newNote(t, "keep me")
	rec := dictation.NewReconciler(repo)

	gt.NoError(t, rec.Stage(ctx, id, "   ", adapter.DeliveryChunk))
	gt.NoError(t, rec.Commit(ctx, id))

	note, err := repo.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, note.RawText, "keep me")
	gt.Equal(t, note.DictationText, "")
}

func TestStageChunksAccumulate(t *testing.T) {
	ctx := context.Background()
	repo, id := newNote(t, "")
	rec := dictation.NewReconciler(repo)

	gt.NoError(t, rec.Stage(ctx, id, "first", adapter.DeliveryChunk))
	gt.NoError(t, rec.Stage(ctx, id, "second", adapter.DeliveryChunk))

	note, err := repo.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, note.DictationText, "first second")
}

func TestStageCumulativeReplaces(t *testing.T) {
	ctx := context.Background()
	repo, id := newNote(t, "")
	rec := dictation.NewReconciler(repo)

	gt.NoError(t, rec.Stage(ctx, id, "hello", adapter.DeliveryCumulative))
	gt.NoError(t, rec.Stage(ctx, id, "hello world", adapter.DeliveryCumulative))

	note, err := repo.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, note.DictationText, "hello world")
	gt.Equal(t, note.LastTranscript, "hello world")
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	repo, id := newNote(t, "Agenda:")
	rec := dictation.NewReconciler(repo)

	// Nothing staged: preview is just the body
	preview, err := rec.Preview(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, preview, "Agenda:")

	gt.NoError(t, rec.Stage(ctx, id, "discuss budget", adapter.DeliveryChunk))
	preview, err = rec.Preview(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, preview, "Agenda:\ndiscuss budget")

	// The body itself was not touched while listening
	note, err := repo.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, note.RawText, "Agenda:")
}

func TestApplyCumulative(t *testing.T) {
	ctx := context.Background()
	repo, id := newNote(t, "")
	rec := dictation.NewReconciler(repo)

	gt.NoError(t, rec.ApplyCumulative(ctx, id, "hello world"))
	gt.NoError(t, rec.ApplyCumulative(ctx, id, "hello world today"))

	note, err := repo.Get(ctx, id)
	gt.NoError(t, err)
	// First callback recorded only; second appended its delta
	gt.Equal(t, note.RawText, "today")
	gt.Equal(t, note.LastTranscript, "hello world today")
}

func TestResetClearsLeftovers(t *testing.T) {
	ctx := context.Background()
	repo, id := newNote(t, "body")
	rec := dictation.NewReconciler(repo)

	gt.NoError(t, rec.Stage(ctx, id, "leftover", adapter.DeliveryChunk))
	gt.NoError(t, rec.Reset(ctx, id))

	note, err := repo.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, note.DictationText, "")
	gt.Equal(t, note.LastTranscript, "")
	gt.Equal(t, note.RawText, "body")
}
