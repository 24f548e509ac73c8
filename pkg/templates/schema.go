package templates

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
	"google.golang.org/genai"
)

// Each template declares its response contract once, as a JSON schema.
// The same schema is converted to genai.Schema for structured output and
// used to validate what the model actually returned before the result is
// accepted into the note.

func stringArray(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: desc,
		Items:       &jsonschema.Schema{Type: "string"},
	}
}

func todoArray() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: "Actionable follow-ups",
		Items: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"text":  {Type: "string", Description: "What needs to be done"},
				"owner": {Type: "string", Description: "Who picked it up, if mentioned"},
				"due":   {Type: "string", Description: "Due date or deadline, if mentioned"},
			},
			Required: []string{"text"},
		},
	}
}

// ResultSchema returns the JSON schema of the structuring result for a
// template. Custom (user-defined) templates respond with the standard
// shape.
func ResultSchema(id model.TemplateID) *jsonschema.Schema {
	if id == model.TemplateOneOnOne {
		return &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"participants":     stringArray("People in the meeting"),
				"discussionPoints": stringArray("Key discussion points"),
				"todos":            todoArray(),
			},
			Required: []string{"participants", "discussionPoints", "todos"},
		}
	}

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"participants": stringArray("People in the meeting"),
			"keyPoints":    stringArray("Key points that were raised"),
			"decisions":    stringArray("Decisions that were made"),
			"todos":        todoArray(),
		},
		Required: []string{"participants", "keyPoints", "decisions", "todos"},
	}
}

// ResponseSchema converts a template's result schema into the genai form
// used for structured output
func ResponseSchema(id model.TemplateID) (*genai.Schema, error) {
	return toGenaiSchema(ResultSchema(id))
}

func toGenaiSchema(schema *jsonschema.Schema) (*genai.Schema, error) {
	if schema == nil {
		return nil, nil
	}

	out := &genai.Schema{}

	switch schema.Type {
	case "object":
		out.Type = genai.TypeObject
	case "string":
		out.Type = genai.TypeString
	case "number", "integer":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
	default:
		return nil, goerr.New("unsupported schema type", goerr.V("type", schema.Type))
	}

	out.Description = schema.Description

	if len(schema.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema)
		for name, prop := range schema.Properties {
			converted, err := toGenaiSchema(prop)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to convert property schema", goerr.V("property", name))
			}
			out.Properties[name] = converted
		}
	}

	if schema.Items != nil {
		items, err := toGenaiSchema(schema.Items)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert items schema")
		}
		out.Items = items
	}

	out.Required = schema.Required
	return out, nil
}

// oneOnOneResult is the wire shape of the one-on-one template, which
// names its points field differently from the common display contract
type oneOnOneResult struct {
	Participants     []string     `json:"participants"`
	DiscussionPoints []string     `json:"discussionPoints"`
	Todos            []model.Todo `json:"todos"`
}

// ParseResult validates the model's raw JSON output against the
// template's schema and normalizes it into the common StructuredMeeting
// shape. For the one-on-one template, discussionPoints become KeyPoints
// so both templates share one display contract.
func ParseResult(id model.TemplateID, raw []byte) (*model.StructuredMeeting, error) {
	resolved, err := ResultSchema(id).Resolve(nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve result schema", goerr.V("templateID", id))
	}

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, goerr.Wrap(err, "structuring result is not valid JSON")
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, goerr.Wrap(err, "structuring result does not match template schema", goerr.V("templateID", id))
	}

	if id == model.TemplateOneOnOne {
		var result oneOnOneResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, goerr.Wrap(err, "failed to decode one-on-one result")
		}
		return &model.StructuredMeeting{
			Participants: result.Participants,
			KeyPoints:    result.DiscussionPoints,
			Todos:        result.Todos,
		}, nil
	}

	var result model.StructuredMeeting
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode structuring result")
	}
	return &result, nil
}
