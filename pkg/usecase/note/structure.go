package note

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/templates"
	"google.golang.org/genai"
)

//go:embed prompt/structure.md
var structurePromptRaw string

var structurePromptTmpl = template.Must(template.New("structure").Parse(structurePromptRaw))

// Structure converts the note's raw text into a structured summary using
// the given template and stores the result on the note, fully replacing
// any prior result. On any failure the prior result is left untouched
// and the error propagates; there is no retry.
func (u *UseCase) Structure(ctx context.Context, id model.NoteID, templateID model.TemplateID) (*model.StructuredMeeting, error) {
	if u.gemini == nil {
		return nil, goerr.New("LLM client is not configured")
	}

	n, err := u.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(n.RawText) == "" {
		return nil, goerr.New("note has no text to structure", goerr.V("id", id))
	}

	tmpl, err := u.registry.Get(templateID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := structurePromptTmpl.Execute(&buf, map[string]any{
		"TemplateHint": tmpl.PromptHint,
		"RawText":      n.RawText,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute structure prompt template")
	}

	schema, err := templates.ResponseSchema(templateID)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	contents := []*genai.Content{
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}

	resp, err := u.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate structured notes")
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, goerr.New("invalid response structure from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	result, err := templates.ParseResult(templateID, []byte(sb.String()))
	if err != nil {
		return nil, err
	}

	if err := u.repo.SetStructured(ctx, id, templateID, result); err != nil {
		return nil, err
	}

	return result, nil
}
