package note

import (
	"github.com/m-mizutani/minuta/pkg/adapter"
	"github.com/m-mizutani/minuta/pkg/repository"
	"github.com/m-mizutani/minuta/pkg/templates"
)

// UseCase provides note-related operations
type UseCase struct {
	repo     *repository.Repository
	gemini   adapter.Gemini
	registry *templates.Registry
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithGemini sets the LLM client used for structuring. Commands that
// never structure can leave it unset.
func WithGemini(gemini adapter.Gemini) Option {
	return func(uc *UseCase) {
		uc.gemini = gemini
	}
}

// WithRegistry replaces the template registry
func WithRegistry(registry *templates.Registry) Option {
	return func(uc *UseCase) {
		uc.registry = registry
	}
}

// New creates a new note UseCase instance
func New(repo *repository.Repository, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:     repo,
		registry: templates.NewRegistry(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Templates lists the registered structuring templates
func (u *UseCase) Templates() []templates.Template {
	return u.registry.List()
}
