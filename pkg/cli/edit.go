package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/urfave/cli/v3"
)

func editCommand() *cli.Command {
	var (
		cfg       config
		noteID    model.NoteID
		title     string
		text      string
		inputPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "note-id",
			Aliases:     []string{"id"},
			Usage:       "Note ID to edit",
			Sources:     cli.EnvVars("MINUTA_NOTE_ID"),
			Destination: (*string)(&noteID),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "New title",
			Destination: &title,
		},
		&cli.StringFlag{
			Name:        "text",
			Usage:       "Replacement body text",
			Destination: &text,
		},
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a text file used as the replacement body",
			Destination: &inputPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "edit",
		Usage: "Update a note's title or body",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			if inputPath != "" {
				data, err := os.ReadFile(inputPath)
				if err != nil {
					return goerr.Wrap(err, "failed to read input file", goerr.Value("path", inputPath))
				}
				text = string(data)
			}

			var opts note.UpdateOptions
			if c.IsSet("title") {
				opts.Title = &title
			}
			if c.IsSet("text") || inputPath != "" {
				opts.RawText = &text
			}
			if opts.Title == nil && opts.RawText == nil {
				return goerr.New("nothing to update: set --title, --text or --input")
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			uc := note.New(repo)
			if _, err := uc.Show(ctx, noteID); err != nil {
				return goerr.Wrap(err, "failed to find note")
			}
			if err := uc.Update(ctx, noteID, opts); err != nil {
				return goerr.Wrap(err, "failed to update note")
			}

			fmt.Fprintf(c.Root().Writer, "Note updated: %s\n", noteID)
			return nil
		},
	}
}
