//nolint:wrapcheck
package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	trackcheck "github.com/tonipetergugic/trackcheck"
	"github.com/tonipetergugic/trackcheck/internal/simulate"
	"github.com/tonipetergugic/trackcheck/internal/store/sqlite"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

func payloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "payload",
		Usage: "Fetch the feedback payload for a queue item, recomputing if stale",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "Path to the sqlite database",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "queue",
				Aliases:  []string{"q"},
				Usage:    "Queue item id",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "User id",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "features",
				Usage: "Path to the extracted features JSON (overrides <audio-path>.features.json)",
			},
			&cli.BoolFlag{
				Name:  "no-simulate",
				Usage: "Skip the codec round trips",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			adapter, err := sqlite.NewAdapter(cmd.String("db"))
			if err != nil {
				return err
			}
			defer adapter.Close()

			extract := featureExtractor(cmd.String("features"))

			var simulateFn trackcheck.SimulateFunc
			if !cmd.Bool("no-simulate") {
				simulateFn = simulate.Run
			}

			orchestrator := trackcheck.NewOrchestrator(adapter, extract, simulateFn, trackcheck.DefaultOptions())

			state, payload, err := orchestrator.GetOrRefreshPayload(ctx, cmd.String("queue"), cmd.String("user"))
			if err != nil {
				return fmt.Errorf("payload request failed: %w", err)
			}

			object := cmd.String("queue") + "/" + cmd.String("user")

			return outputPayload(object, payload, string(state), cmd.String("format"))
		},
	}
}

// featureExtractor adapts the on-disk feature sidecar convention to the
// orchestrator's extract hook: features live next to the audio file unless
// an explicit path is given.
func featureExtractor(override string) trackcheck.ExtractFunc {
	return func(_ context.Context, audioPath string) (*types.TrackFeatures, error) {
		path := override
		if path == "" {
			path = audioPath + ".features.json"
		}

		return readFeatures(path)
	}
}
