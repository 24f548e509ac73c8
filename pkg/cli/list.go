package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)

	return &cli.Command{
		Name:  "list",
		Usage: "List meeting notes, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			uc := note.New(repo)
			notes, err := uc.List(ctx, note.ListOptions{})
			if err != nil {
				return goerr.Wrap(err, "failed to list notes")
			}

			for _, n := range notes {
				status := ""
				if n.Structured != nil {
					status = string(n.TemplateID)
				}
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t%s\n", n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Title, status)
			}

			return nil
		},
	}
}
