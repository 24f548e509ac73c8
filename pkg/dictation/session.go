package dictation

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/adapter"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/repository"
	"github.com/m-mizutani/minuta/pkg/utils/logging"
)

// Session is a bounded dictation run against one note. Only one session
// may be listening per note; the session itself enforces this, the
// repository knows nothing about sessions.
type Session struct {
	repo       *repository.Repository
	recognizer adapter.Recognizer
	reconciler *Reconciler
	noteID     model.NoteID
	opts       adapter.StartOptions

	mu        sync.Mutex
	listening bool
	sub       *adapter.Subscription
}

// SessionOption is a functional option for Session
type SessionOption func(*Session)

// WithStartOptions sets recognizer start options (language, delivery mode)
func WithStartOptions(opts adapter.StartOptions) SessionOption {
	return func(s *Session) {
		s.opts = opts
	}
}

// NewSession binds a note to a recognizer
func NewSession(repo *repository.Repository, recognizer adapter.Recognizer, noteID model.NoteID, opts ...SessionOption) *Session {
	s := &Session{
		repo:       repo,
		recognizer: recognizer,
		reconciler: NewReconciler(repo),
		noteID:     noteID,
		opts: adapter.StartOptions{
			Lang:       "en-US",
			Continuous: true,
			Delivery:   adapter.DeliveryChunk,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start begins listening. Availability and permission are checked before
// any state is mutated; a failed start leaves the note untouched.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listening {
		return goerr.New("dictation session is already active", goerr.V("noteID", s.noteID))
	}

	if !s.recognizer.IsAvailable() {
		return goerr.Wrap(model.ErrSpeechUnavailable, "cannot start dictation")
	}

	granted, err := s.recognizer.RequestPermission(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to request speech permission")
	}
	if !granted {
		return goerr.Wrap(model.ErrPermissionDenied, "cannot start dictation")
	}

	// A previous session's staged text must never bleed into this one
	if err := s.reconciler.Reset(ctx, s.noteID); err != nil {
		return err
	}

	sub, err := s.recognizer.Start(ctx, s.opts, func(text string) {
		if err := s.reconciler.Stage(ctx, s.noteID, text, s.opts.Delivery); err != nil {
			logging.From(ctx).Warn("failed to stage transcript", "noteID", s.noteID, "error", err)
		}
	})
	if err != nil {
		return goerr.Wrap(err, "failed to start recognition")
	}

	s.sub = sub
	s.listening = true
	return nil
}

// Stop ends the session, committing whatever was staged. Teardown is
// unconditional: the subscription is released and the session marked idle
// before the recognizer halt is attempted, so a failing halt cannot leave
// a zombie session behind.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return nil
	}
	sub := s.sub
	s.sub = nil
	s.listening = false
	s.mu.Unlock()

	stopErr := s.recognizer.Stop(sub)

	if err := s.reconciler.Commit(ctx, s.noteID); err != nil {
		return err
	}

	if stopErr != nil {
		return goerr.Wrap(stopErr, "recognizer halt failed", goerr.V("noteID", s.noteID))
	}
	return nil
}

// Done returns a channel closed when the recognition stream ends. Returns
// nil when the session is not listening.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub == nil {
		return nil
	}
	return s.sub.Done()
}

// Listening reports whether the session is active
func (s *Session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// Editable reports whether manual edits to the note body are allowed.
// The body is read-only while a session is listening so manual edits
// cannot interleave with live transcript staging.
func (s *Session) Editable() bool {
	return !s.Listening()
}

// Preview exposes the reconciler's live view for rendering
func (s *Session) Preview(ctx context.Context) (string, error) {
	return s.reconciler.Preview(ctx, s.noteID)
}
