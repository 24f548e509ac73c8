package cli

import (
	"context"

	"github.com/m-mizutani/minuta/pkg/service/mcp"
	"github.com/m-mizutani/minuta/pkg/usecase/note"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the note collection as MCP tools over stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogging()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			registry, err := cfg.newRegistry()
			if err != nil {
				return err
			}

			opts := []note.Option{note.WithRegistry(registry)}

			// Structuring is offered only when Gemini is configured;
			// the structure_note tool fails otherwise.
			if cfg.geminiProject != "" {
				gemini, err := cfg.newGemini(ctx)
				if err != nil {
					return err
				}
				opts = append(opts, note.WithGemini(gemini))
			}

			server := mcp.NewServer(note.New(repo, opts...), version)
			return server.Run(ctx)
		},
	}
}
