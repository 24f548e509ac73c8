package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/urfave/cli/v3"
)

func appendCommand() *cli.Command {
	var (
		cfg    config
		noteID model.NoteID
		text   string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "note-id",
			Aliases:     []string{"id"},
			Usage:       "Note ID to append to",
			Sources:     cli.EnvVars("MINUTA_NOTE_ID"),
			Destination: (*string)(&noteID),
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "text",
			Usage:       "Text to append. Reads stdin when omitted.",
			Destination: &text,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "append",
		Usage: "Append text to a note's body",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			if text == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return goerr.Wrap(err, "failed to read stdin")
				}
				text = string(data)
			}
			if text == "" {
				return goerr.New("nothing to append")
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
			if err := uc.Append(ctx, noteID, text); err != nil {
				return goerr.Wrap(err, "failed to append to note")
			}

			fmt.Fprintf(c.Root().Writer, "Appended to note: %s\n", noteID)
			return nil
		},
	}
}
