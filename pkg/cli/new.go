package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/urfave/cli/v3"
)

func newCommand() *cli.Command {
	var (
		cfg       config
		title     string
		text      string
		inputPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "Title of the new note",
			Destination: &title,
		},
		&cli.StringFlag{
			Name:        "text",
			Usage:       "Initial body text",
			Destination: &text,
		},
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a text file used as the initial body",
			Destination: &inputPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "new",
		Usage: "Create a new meeting note",
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

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			uc := note.New(repo)
			created, err := uc.Create(ctx, note.CreateOptions{
				Title:   title,
				RawText: text,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to create note")
			}

			fmt.Fprintf(c.Root().Writer, "Note created: %s\n", created.ID)
			return nil
		},
	}
}
