package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/adapter"
	"github.com/m-mizutani/minuta/pkg/dictation"
	"github.com/m-mizutani/minuta/pkg/model"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/urfave/cli/v3"
)

func dictateCommand() *cli.Command {
	var (
		cfg        config
		noteID     model.NoteID
		lang       string
		cumulative bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "note-id",
			Aliases:     []string{"id"},
			Usage:       "Note ID to dictate into. A new note is created when omitted.",
			Sources:     cli.EnvVars("MINUTA_NOTE_ID"),
			Destination: (*string)(&noteID),
		},
		&cli.StringFlag{
			Name:        "lang",
			Usage:       "Recognition language",
			Value:       "en-US",
			Sources:     cli.EnvVars("MINUTA_DICTATE_LANG"),
			Destination: &lang,
		},
		&cli.BoolFlag{
			Name:        "cumulative",
			Usage:       "Treat each result as the full transcript so far instead of a new chunk",
			Sources:     cli.EnvVars("MINUTA_DICTATE_CUMULATIVE"),
			Destination: &cumulative,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "dictate",
		Usage: "Dictate into a note from the terminal",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			if noteID == "" {
				uc := note.New(repo)
				created, err := uc.Create(ctx, note.CreateOptions{})
				if err != nil {
					return goerr.Wrap(err, "failed to create note")
				}
				noteID = created.ID
				fmt.Fprintf(c.Root().Writer, "Note created: %s\n", noteID)
			} else if _, err := repo.Get(ctx, noteID); err != nil {
				return goerr.Wrap(err, "failed to find note")
			}

			delivery := adapter.DeliveryChunk
			if cumulative {
				delivery = adapter.DeliveryCumulative
			}

			session := dictation.NewSession(repo, adapter.NewTerminalRecognizer(), noteID,
				dictation.WithStartOptions(adapter.StartOptions{
					Lang:       lang,
					Continuous: true,
					Delivery:   delivery,
				}))

			sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := session.Start(sigCtx); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Dictating into %s. Enter an empty line with Ctrl-D to finish.\n", noteID)

			select {
			case <-session.Done():
			case <-sigCtx.Done():
			}

			if err := session.Stop(ctx); err != nil {
				return goerr.Wrap(err, "failed to finish dictation")
			}

			n, err := repo.Get(ctx, noteID)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "\n%s\n", n.RawText)
			return nil
		},
	}
}
