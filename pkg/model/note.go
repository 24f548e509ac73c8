package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrNotHydrated       = goerr.New("repository is not hydrated yet")
	ErrNoteNotFound      = goerr.New("note not found")
	ErrInvalidTemplate   = goerr.New("invalid template ID")
	ErrSpeechUnavailable = goerr.New("speech recognition is not available")
	ErrPermissionDenied  = goerr.New("speech recognition permission denied")
)

type NoteID string

// NewNoteID generates a new unique NoteID
func NewNoteID() NoteID {
	return NoteID(uuid.New().String())
}

// DefaultNoteTitle is used when a note is created without a title
const DefaultNoteTitle = "New meeting"

type TemplateID string

const (
	TemplateStandard TemplateID = "standard"
	TemplateOneOnOne TemplateID = "oneOnOne"
)

// Validate checks if the template ID is one of the built-in identifiers
func (t TemplateID) Validate() error {
	switch t {
	case TemplateStandard, TemplateOneOnOne:
		return nil
	default:
		return goerr.Wrap(ErrInvalidTemplate, "unknown template", goerr.V("templateID", t))
	}
}

// Note is a single unit of meeting content. RawText is the canonical
// persisted body; DictationText and LastTranscript exist only while a
// dictation session is active and are excluded from serialization.
type Note struct {
	ID        NoteID    `json:"id"`
	Title     string    `json:"title"`
	RawText   string    `json:"rawText"`
	CreatedAt time.Time `json:"createdAt"`

	DictationText  string `json:"-"`
	LastTranscript string `json:"-"`

	TemplateID TemplateID         `json:"templateId,omitempty"`
	Structured *StructuredMeeting `json:"structured,omitempty"`
}

// StructuredMeeting is the result of applying a structuring template to
// RawText. It is stored verbatim and fully replaced on re-application.
type StructuredMeeting struct {
	Participants []string `json:"participants"`
	KeyPoints    []string `json:"keyPoints"`
	Todos        []Todo   `json:"todos"`
	Decisions    []string `json:"decisions,omitempty"`
}

type Todo struct {
	Text  string `json:"text"`
	Owner string `json:"owner,omitempty"`
	Due   string `json:"due,omitempty"`
}

// Format renders a todo as a single display line
func (t Todo) Format() string {
	var sb strings.Builder
	sb.WriteString("• ")
	sb.WriteString(t.Text)
	if t.Owner != "" {
		sb.WriteString(" (owner: ")
		sb.WriteString(t.Owner)
		sb.WriteString(")")
	}
	if t.Due != "" {
		sb.WriteString(" (due: ")
		sb.WriteString(t.Due)
		sb.WriteString(")")
	}
	return sb.String()
}
