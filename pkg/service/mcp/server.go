package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server exposes the note collection as MCP tools over stdio so that
// LLM agents can read and write meeting notes.
type Server struct {
	uc     *note.UseCase
	server *mcp.Server
}

func NewServer(uc *note.UseCase, version string) *Server {
	s := &Server{uc: uc}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "minuta",
		Version: version,
	}, nil)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List meeting notes, newest first. Pass a query to filter by body text (case-insensitive substring match).",
	}, s.listNotes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_note",
		Description: "Get the full content of a meeting note by ID, including the structured summary if one exists",
	}, s.getNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_note",
		Description: "Create a new meeting note with an optional title and body",
	}, s.createNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "append_note",
		Description: "Append text to the body of an existing meeting note",
	}, s.appendNote)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "structure_note",
		Description: "Run AI structuring over a note's body and store the result. Template is 'standard' or 'oneOnOne'.",
	}, s.structureNote)

	return s
}

// Run serves tool calls over stdio until the context is cancelled or
// the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	if err := s.server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "failed to run MCP server")
	}
	return nil
}

type listNotesParams struct {
	Query string `json:"query,omitempty" jsonschema:"Filter notes whose body contains this text. Empty returns all notes."`
}

func (s *Server) listNotes(ctx context.Context, req *mcp.CallToolRequest, params *listNotesParams) (*mcp.CallToolResult, any, error) {
	notes, err := s.uc.List(ctx, note.ListOptions{Query: params.Query})
	if err != nil {
		return nil, nil, err
	}

	if len(notes) == 0 {
		return textResult("No notes found"), nil, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d notes:\n", len(notes))
	for _, n := range notes {
		fmt.Fprintf(&sb, "- %s [%s] %s\n", n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Title)
	}
	return textResult(sb.String()), nil, nil
}

type getNoteParams struct {
	ID string `json:"id" jsonschema:"The note ID"`
}

func (s *Server) getNote(ctx context.Context, req *mcp.CallToolRequest, params *getNoteParams) (*mcp.CallToolResult, any, error) {
	n, err := s.uc.Show(ctx, model.NoteID(params.ID))
	if err != nil {
		return nil, nil, err
	}
	return textResult(renderNote(n)), nil, nil
}

type createNoteParams struct {
	Title string `json:"title,omitempty" jsonschema:"The note title. Defaults to 'New meeting' when empty."`
	Text  string `json:"text,omitempty" jsonschema:"The initial body text"`
}

func (s *Server) createNote(ctx context.Context, req *mcp.CallToolRequest, params *createNoteParams) (*mcp.CallToolResult, any, error) {
	n, err := s.uc.Create(ctx, note.CreateOptions{
		Title:   params.Title,
		RawText: params.Text,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("Created note %s: %s", n.ID, n.Title)), nil, nil
}

type appendNoteParams struct {
	ID   string `json:"id" jsonschema:"The note ID"`
	Text string `json:"text" jsonschema:"The text to append to the note body"`
}

func (s *Server) appendNote(ctx context.Context, req *mcp.CallToolRequest, params *appendNoteParams) (*mcp.CallToolResult, any, error) {
	if params.Text == "" {
		return nil, nil, goerr.New("text is required")
	}

	// Unknown IDs are a silent no-op at the repository; surface them here
	if _, err := s.uc.Show(ctx, model.NoteID(params.ID)); err != nil {
		return nil, nil, err
	}
	if err := s.uc.Append(ctx, model.NoteID(params.ID), params.Text); err != nil {
		return nil, nil, err
	}
	return textResult(fmt.Sprintf("Appended to note %s", params.ID)), nil, nil
}

type structureNoteParams struct {
	ID       string `json:"id" jsonschema:"The note ID"`
	Template string `json:"template,omitempty" jsonschema:"The template ID: 'standard' (default) or 'oneOnOne'"`
}

func (s *Server) structureNote(ctx context.Context, req *mcp.CallToolRequest, params *structureNoteParams) (*mcp.CallToolResult, any, error) {
	templateID := model.TemplateID(params.Template)
	if templateID == "" {
		templateID = model.TemplateStandard
	}

	result, err := s.uc.Structure(ctx, model.NoteID(params.ID), templateID)
	if err != nil {
		return nil, nil, err
	}
	return textResult(renderStructured(result)), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func renderNote(n *model.Note) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", n.Title)
	fmt.Fprintf(&sb, "ID: %s\n", n.ID)
	fmt.Fprintf(&sb, "Created: %s\n\n", n.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString(n.RawText)
	sb.WriteString("\n")

	if n.Structured != nil {
		sb.WriteString("\n## Summary\n")
		sb.WriteString(renderStructured(n.Structured))
	}
	return sb.String()
}

func renderStructured(s *model.StructuredMeeting) string {
	var sb strings.Builder
	if len(s.Participants) > 0 {
		fmt.Fprintf(&sb, "Participants: %s\n", strings.Join(s.Participants, ", "))
	}
	if len(s.KeyPoints) > 0 {
		sb.WriteString("Key points:\n")
		for _, p := range s.KeyPoints {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	if len(s.Decisions) > 0 {
		sb.WriteString("Decisions:\n")
		for _, d := range s.Decisions {
			fmt.Fprintf(&sb, "- %s\n", d)
		}
	}
	if len(s.Todos) > 0 {
		sb.WriteString("Todos:\n")
		for _, todo := range s.Todos {
			fmt.Fprintf(&sb, "%s\n", todo.Format())
		}
	}
	return sb.String()
}
