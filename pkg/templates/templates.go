package templates

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
	"gopkg.in/yaml.v3"
)

// Template describes one structuring template: an identifier shown to the
// user and the instructions handed to the model alongside the raw notes.
type Template struct {
	ID         model.TemplateID `yaml:"id"`
	Title      string           `yaml:"title"`
	PromptHint string           `yaml:"promptHint"`
}

// BuiltIn returns the two built-in templates
func BuiltIn() []Template {
	return []Template{
		{
			ID:    model.TemplateStandard,
			Title: "Standard meeting",
			PromptHint: "Extract participants, key points, decisions, and todos. " +
				"Todos should be actionable and concise.",
		},
		{
			ID:    model.TemplateOneOnOne,
			Title: "1:1 meeting",
			PromptHint: "Extract participants, key discussion points, and todos. " +
				"Keep it practical, with clear next steps.",
		},
	}
}

// Registry holds the available templates, built-ins plus any loaded from
// a user template file.
type Registry struct {
	templates map[model.TemplateID]Template
	order     []model.TemplateID
}

// NewRegistry creates a registry seeded with the built-in templates
func NewRegistry() *Registry {
	r := &Registry{
		templates: make(map[model.TemplateID]Template),
	}
	for _, tmpl := range BuiltIn() {
		r.add(tmpl)
	}
	return r
}

func (r *Registry) add(tmpl Template) {
	if _, ok := r.templates[tmpl.ID]; !ok {
		r.order = append(r.order, tmpl.ID)
	}
	r.templates[tmpl.ID] = tmpl
}

// Load merges templates from a YAML file into the registry. Entries with
// a built-in ID override the built-in prompt hint; new IDs are appended.
// Custom templates respond with the standard schema.
func (r *Registry) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read template file", goerr.V("path", path))
	}

	var loaded []Template
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return goerr.Wrap(err, "failed to parse template file", goerr.V("path", path))
	}

	for _, tmpl := range loaded {
		if tmpl.ID == "" {
			return goerr.New("template entry without id", goerr.V("path", path))
		}
		if tmpl.PromptHint == "" {
			return goerr.New("template entry without promptHint", goerr.V("id", tmpl.ID))
		}
		r.add(tmpl)
	}
	return nil
}

// Get returns the template with the given ID
func (r *Registry) Get(id model.TemplateID) (Template, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return Template{}, goerr.Wrap(model.ErrInvalidTemplate, "template not registered", goerr.V("id", id))
	}
	return tmpl, nil
}

// List returns all templates in registration order
func (r *Registry) List() []Template {
	list := make([]Template, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.templates[id])
	}
	return list
}
