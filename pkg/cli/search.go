package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg   config
		query string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Text to match against note bodies (case-insensitive)",
			Sources:     cli.EnvVars("MINUTA_SEARCH_QUERY"),
			Destination: &query,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "search",
		Usage: "Search note bodies for a substring",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			uc := note.New(repo)
			notes, err := uc.List(ctx, note.ListOptions{Query: query})
			if err != nil {
				return goerr.Wrap(err, "failed to search notes")
			}

			if len(notes) == 0 {
				fmt.Fprintf(c.Root().Writer, "No notes matched\n")
				return nil
			}

			for _, n := range notes {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\n", n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Title)
			}

			return nil
		},
	}
}
