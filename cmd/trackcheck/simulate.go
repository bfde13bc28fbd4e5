//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tonipetergugic/trackcheck/internal/simulate"
)

var errSimulateArgs = errors.New("expected exactly one argument: audio file path")

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:      "simulate",
		Usage:     "Run the lossy-codec round trips and report post-encode peaks",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errSimulateArgs, cmd.NArg())
			}

			filePath := cmd.Args().First()

			sim, err := simulate.Run(ctx, filePath)
			if err != nil {
				return fmt.Errorf("codec simulation failed: %w", err)
			}

			return outputSimulation(filePath, sim, cmd.String("format"))
		},
	}
}
