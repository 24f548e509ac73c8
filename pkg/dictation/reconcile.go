package dictation

import (
	"context"
	"strings"

	"github.com/m-mizutani/minuta/pkg/adapter"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/repository"
)

// Reconciler incorporates speech-recognition output into a note. The
// canonical strategy is staged dictation: live transcript text accumulates
// only in the transient DictationText field and the durable body is
// touched once, at commit. MergeCumulative remains available for backends
// that must write through to the body on every callback.
type Reconciler struct {
	repo *repository.Repository
}

func NewReconciler(repo *repository.Repository) *Reconciler {
	return &Reconciler{repo: repo}
}

// Reset clears any transient dictation state on the note. Sessions call
// this first so a previous session's leftovers never bleed into a new one.
func (r *Reconciler) Reset(ctx context.Context, id model.NoteID) error {
	empty := ""
	return r.repo.Update(ctx, id, repository.Patch{
		DictationText:  &empty,
		LastTranscript: &empty,
	})
}

// Stage records a recognition result into the note's transient dictation
// text. Chunk delivery appends the newly recognized words; cumulative
// delivery re-sends the whole utterance, so the staged text is replaced.
func (r *Reconciler) Stage(ctx context.Context, id model.NoteID, text string, delivery adapter.Delivery) error {
	note, err := r.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	var staged string
	switch delivery {
	case adapter.DeliveryCumulative:
		staged = text
	default:
		staged = joinWords(note.DictationText, text)
	}

	return r.repo.Update(ctx, id, repository.Patch{
		DictationText:  &staged,
		LastTranscript: &text,
	})
}

// Preview returns what the user sees while dictating: the durable body
// with the staged transcript after it. The body itself is not mutated.
func (r *Reconciler) Preview(ctx context.Context, id model.NoteID) (string, error) {
	note, err := r.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	staged := strings.TrimSpace(note.DictationText)
	if staged == "" {
		return note.RawText, nil
	}
	if note.RawText == "" {
		return staged, nil
	}
	return note.RawText + "\n" + staged, nil
}

// Commit moves the staged transcript into the durable body and clears the
// transient state. A whitespace-only staging leaves the body unchanged,
// so committing twice is harmless.
func (r *Reconciler) Commit(ctx context.Context, id model.NoteID) error {
	note, err := r.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	empty := ""
	staged := strings.TrimSpace(note.DictationText)
	if staged == "" {
		return r.repo.Update(ctx, id, repository.Patch{
			DictationText:  &empty,
			LastTranscript: &empty,
		})
	}

	raw := note.RawText
	if raw == "" {
		raw = staged
	} else {
		raw = raw + "\n" + staged
	}

	return r.repo.Update(ctx, id, repository.Patch{
		RawText:        &raw,
		DictationText:  &empty,
		LastTranscript: &empty,
	})
}

// ApplyCumulative is the write-through strategy for cumulative delivery:
// each callback carries the full transcript-so-far and only the new
// suffix is appended to the body. It exists for backends that cannot
// stage; prefer the staged path.
func (r *Reconciler) ApplyCumulative(ctx context.Context, id model.NoteID, next string) error {
	note, err := r.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	raw, last := MergeCumulative(note.RawText, note.LastTranscript, next)
	return r.repo.Update(ctx, id, repository.Patch{
		RawText:        &raw,
		LastTranscript: &last,
	})
}

// MergeCumulative merges a cumulative transcript into the note body.
// prev is the transcript seen on the previous callback. When next extends
// prev, only the trimmed delta is appended, separated by a single space
// unless the body already ends with a newline. When next does not have
// prev as a prefix the recognizer restarted, and next is appended on a
// new line rather than attempting a partial diff. The returned last value
// is always next.
func MergeCumulative(rawText, prev, next string) (string, string) {
	if prev == "" {
		// First callback of the session: record only, so partial words
		// never flash into the body
		return rawText, next
	}

	if strings.HasPrefix(next, prev) {
		delta := strings.TrimLeft(next[len(prev):], " \t")
		if delta == "" {
			return rawText, next
		}
		switch {
		case rawText == "":
			return delta, next
		case strings.HasSuffix(rawText, "\n"):
			return rawText + delta, next
		default:
			return rawText + " " + delta, next
		}
	}

	if rawText == "" {
		return next, next
	}
	return rawText + "\n" + next, next
}

func joinWords(current, text string) string {
	if current == "" {
		return text
	}
	return current + " " + text
}
