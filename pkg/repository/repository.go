package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/adapter"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/utils/logging"
)

// storageKey is the single key under which the whole collection is persisted
const storageKey = "meeting-notes:v1"

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
)

// Event notifies subscribers that a note was mutated
type Event struct {
	NoteID model.NoteID
	Op     Op
}

// Repository is the single source of truth for the note collection. All
// mutations are synchronous and applied in call order; persistence runs
// asynchronously after each mutation and always serializes the in-memory
// state as it is at marshal time, so overlapping persists degrade to
// last-write-wins rather than writing stale snapshots.
type Repository struct {
	mu       sync.Mutex
	store    adapter.KVStore
	notes    []*model.Note
	hydrated bool

	persists sync.WaitGroup

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int

	now   func() time.Time
	newID func() model.NoteID
}

// Option is a functional option for Repository
type Option func(*Repository)

// WithNow overrides the clock, mainly for tests
func WithNow(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithIDGenerator overrides note ID generation, mainly for tests
func WithIDGenerator(gen func() model.NoteID) Option {
	return func(r *Repository) {
		r.newID = gen
	}
}

// New creates a Repository on top of the given durable store. Hydrate must
// be called before any read or mutation is meaningful.
func New(store adapter.KVStore, opts ...Option) *Repository {
	r := &Repository{
		store: store,
		subs:  make(map[int]chan Event),
		now:   time.Now,
		newID: model.NewNoteID,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Hydrate loads the persisted collection. An absent blob means first
// launch and yields an empty, hydrated collection; a malformed blob is an
// error and leaves the repository unhydrated so it cannot masquerade as
// empty. Calling Hydrate again after success is a no-op.
func (r *Repository) Hydrate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hydrated {
		return nil
	}

	raw, found, err := r.store.Get(ctx, storageKey)
	if err != nil {
		return goerr.Wrap(err, "failed to load persisted notes")
	}

	var notes []*model.Note
	if found {
		if err := json.Unmarshal([]byte(raw), &notes); err != nil {
			return goerr.Wrap(err, "failed to parse persisted notes", goerr.V("key", storageKey))
		}
	}

	// Transient dictation state never survives a restart
	for _, note := range notes {
		note.DictationText = ""
		note.LastTranscript = ""
	}

	r.notes = notes
	r.hydrated = true
	return nil
}

// Hydrated reports whether Hydrate has completed successfully
func (r *Repository) Hydrated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hydrated
}

// CreateInput contains optional initial fields for a new note
type CreateInput struct {
	Title   string
	RawText string
}

// Create allocates a new note at the head of the collection and returns it
// synchronously. Persistence is triggered but not awaited.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*model.Note, error) {
	r.mu.Lock()
	if !r.hydrated {
		r.mu.Unlock()
		return nil, goerr.Wrap(model.ErrNotHydrated, "cannot create note before hydration")
	}

	title := input.Title
	if title == "" {
		title = model.DefaultNoteTitle
	}

	note := &model.Note{
		ID:        r.newID(),
		Title:     title,
		RawText:   input.RawText,
		CreatedAt: r.now(),
	}
	r.notes = append([]*model.Note{note}, r.notes...)
	copied := *note
	r.mu.Unlock()

	r.schedulePersist(ctx)
	r.publish(Event{NoteID: note.ID, Op: OpCreate})
	return &copied, nil
}

// Patch names the fields to replace on a note. Nil fields are untouched.
type Patch struct {
	Title          *string
	RawText        *string
	DictationText  *string
	LastTranscript *string
	TemplateID     *model.TemplateID
	Structured     *model.StructuredMeeting
}

// Update applies a shallow merge of the patch onto the note with the given
// ID. An unknown ID is a silent no-op: the collection is left untouched
// and no error is returned.
func (r *Repository) Update(ctx context.Context, id model.NoteID, patch Patch) error {
	r.mu.Lock()
	if !r.hydrated {
		r.mu.Unlock()
		return goerr.Wrap(model.ErrNotHydrated, "cannot update note before hydration")
	}

	note := r.find(id)
	if note == nil {
		r.mu.Unlock()
		logging.From(ctx).Debug("update for unknown note", "id", id)
		return nil
	}

	if patch.Title != nil {
		note.Title = *patch.Title
	}
	if patch.RawText != nil {
		note.RawText = *patch.RawText
	}
	if patch.DictationText != nil {
		note.DictationText = *patch.DictationText
	}
	if patch.LastTranscript != nil {
		note.LastTranscript = *patch.LastTranscript
	}
	if patch.TemplateID != nil {
		note.TemplateID = *patch.TemplateID
	}
	if patch.Structured != nil {
		note.Structured = patch.Structured
	}
	r.mu.Unlock()

	r.schedulePersist(ctx)
	r.publish(Event{NoteID: id, Op: OpUpdate})
	return nil
}

// SetStructured replaces the structuring result and the template that
// produced it in one mutation. Any prior result is fully replaced.
func (r *Repository) SetStructured(ctx context.Context, id model.NoteID, templateID model.TemplateID, structured *model.StructuredMeeting) error {
	return r.Update(ctx, id, Patch{
		TemplateID: &templateID,
		Structured: structured,
	})
}

// AppendRawText appends text to a note's body, joined by a newline when
// the body already has content.
func (r *Repository) AppendRawText(ctx context.Context, id model.NoteID, text string) error {
	r.mu.Lock()
	if !r.hydrated {
		r.mu.Unlock()
		return goerr.Wrap(model.ErrNotHydrated, "cannot append before hydration")
	}

	note := r.find(id)
	if note == nil {
		r.mu.Unlock()
		logging.From(ctx).Debug("append for unknown note", "id", id)
		return nil
	}

	note.RawText = joinBody(note.RawText, text)
	r.mu.Unlock()

	r.schedulePersist(ctx)
	r.publish(Event{NoteID: id, Op: OpUpdate})
	return nil
}

// Get returns a copy of the note with the given ID
func (r *Repository) Get(ctx context.Context, id model.NoteID) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hydrated {
		return nil, goerr.Wrap(model.ErrNotHydrated, "cannot read note before hydration")
	}

	note := r.find(id)
	if note == nil {
		return nil, goerr.Wrap(model.ErrNoteNotFound, "no such note", goerr.V("id", id))
	}
	copied := *note
	return &copied, nil
}

// Flush waits for all in-flight persist operations to complete. The CLI
// calls this before exit so fire-and-forget writes are not lost.
func (r *Repository) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.persists.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "flush interrupted")
	}
}

// Close flushes pending writes and releases the underlying store
func (r *Repository) Close(ctx context.Context) error {
	if err := r.Flush(ctx); err != nil {
		return err
	}
	if err := r.store.Close(); err != nil {
		return goerr.Wrap(err, "failed to close store")
	}
	return nil
}

// Subscribe registers a mutation listener. The returned cancel func must
// be called to release the subscription. Events to a full channel are
// dropped rather than blocking mutations.
func (r *Repository) Subscribe() (<-chan Event, func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan Event, 16)
	r.subs[id] = ch

	cancel := func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (r *Repository) publish(ev Event) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// find must be called with r.mu held
func (r *Repository) find(id model.NoteID) *model.Note {
	for _, note := range r.notes {
		if note.ID == id {
			return note
		}
	}
	return nil
}

func (r *Repository) schedulePersist(ctx context.Context) {
	r.persists.Add(1)
	go func() {
		defer r.persists.Done()
		if err := r.persist(ctx); err != nil {
			logging.From(ctx).Error("failed to persist notes", "error", err)
		}
	}()
}

func (r *Repository) persist(ctx context.Context) error {
	// Serialize the collection as it is right now, not as it was when the
	// triggering mutation ran. Concurrent persists race on Set and the
	// last write wins, which is safe because each carries the full state.
	r.mu.Lock()
	data, err := json.Marshal(r.notes)
	r.mu.Unlock()
	if err != nil {
		return goerr.Wrap(err, "failed to serialize notes")
	}

	if err := r.store.Set(ctx, storageKey, string(data)); err != nil {
		return goerr.Wrap(err, "failed to write notes", goerr.V("key", storageKey))
	}
	return nil
}

func joinBody(body, text string) string {
	if body == "" {
		return text
	}
	return body + "\n" + text
}
