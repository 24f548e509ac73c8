package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/urfave/cli/v3"
)

func applyCommand() *cli.Command {
	var (
		cfg        config
		noteID     model.NoteID
		templateID model.TemplateID
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "note-id",
			Aliases:     []string{"id"},
			Usage:       "Note ID to structure",
			Sources:     cli.EnvVars("MINUTA_NOTE_ID"),
			Destination: (*string)(&noteID),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "template",
			Aliases:     []string{"T"},
			Usage:       "Meeting template ID (standard, oneOnOne or a custom template)",
			Value:       string(model.TemplateStandard),
			Sources:     cli.EnvVars("MINUTA_TEMPLATE"),
			Destination: (*string)(&templateID),
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "apply",
		Usage: "Run AI structuring over a note with a meeting template",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			registry, err := cfg.newRegistry()
			if err != nil {
				return err
			}

			uc := note.New(repo, note.WithGemini(gemini), note.WithRegistry(registry))

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " Structuring note..."
			sp.Start()
			result, err := uc.Structure(ctx, noteID, templateID)
			sp.Stop()
			if err != nil {
				return goerr.Wrap(err, "failed to structure note")
			}

			fmt.Fprintf(c.Root().Writer, "Structured note %s with template %s\n\n", noteID, templateID)
			printStructured(c.Root().Writer, result)
			return nil
		},
	}
}
