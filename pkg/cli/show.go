package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/urfave/cli/v3"
)

func showCommand() *cli.Command {
	var (
		cfg    config
		noteID model.NoteID
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "note-id",
			Aliases:     []string{"id"},
			Usage:       "Note ID to show",
			Sources:     cli.EnvVars("MINUTA_NOTE_ID"),
			Destination: (*string)(&noteID),
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "show",
		Usage: "Show the full content of a note",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			uc := note.New(repo)
			n, err := uc.Show(ctx, noteID)
			if err != nil {
				return goerr.Wrap(err, "failed to show note")
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "# %s\n", n.Title)
			fmt.Fprintf(w, "ID: %s\n", n.ID)
			fmt.Fprintf(w, "Created: %s\n\n", n.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "%s\n", n.RawText)

			if n.Structured != nil {
				fmt.Fprintf(w, "\n## Summary (%s)\n", n.TemplateID)
				printStructured(w, n.Structured)
			}
			return nil
		},
	}
}

func printStructured(w io.Writer, s *model.StructuredMeeting) {
	if len(s.Participants) > 0 {
		fmt.Fprintf(w, "Participants: %s\n", strings.Join(s.Participants, ", "))
	}
	if len(s.KeyPoints) > 0 {
		fmt.Fprintf(w, "Key points:\n")
		for _, p := range s.KeyPoints {
			fmt.Fprintf(w, "- %s\n", p)
		}
	}
	if len(s.Decisions) > 0 {
		fmt.Fprintf(w, "Decisions:\n")
		for _, d := range s.Decisions {
			fmt.Fprintf(w, "- %s\n", d)
		}
	}
	if len(s.Todos) > 0 {
		fmt.Fprintf(w, "Todos:\n")
		for _, todo := range s.Todos {
			fmt.Fprintf(w, "%s\n", todo.Format())
		}
	}
}
