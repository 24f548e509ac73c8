package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:    "minuta",
		Usage:   "Meeting note taking with dictation and AI structuring",
		Version: version,
		Commands: []*cli.Command{
			newCommand(),
			listCommand(),
			showCommand(),
			editCommand(),
			appendCommand(),
			searchCommand(),
			applyCommand(),
			dictateCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
