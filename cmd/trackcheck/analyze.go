//nolint:wrapcheck
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	trackcheck "github.com/tonipetergugic/trackcheck"
	"github.com/tonipetergugic/trackcheck/internal/types"
)

var errInvalidArgCount = errors.New("expected exactly one argument: features file path or \"-\" for stdin")

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Score extracted track features and print the feedback report",
		ArgsUsage: "<features.json | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "checks",
				Aliases: []string{"C"},
				Usage:   "Comma-separated checks or presets: all, structure, delivery, energy-arc, drop-confidence, hook, structural-balance, arrangement-density, dynamics-health, headroom, streaming-risk",
				Value:   "all",
			},
			&cli.StringFlag{
				Name:  "overs",
				Usage: "Path to a JSON file with the recorded true-peak-over intervals",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			checks, err := parseChecks(cmd.String("checks"))
			if err != nil {
				return err
			}

			inputPath := cmd.Args().First()

			features, err := readFeatures(inputPath)
			if err != nil {
				return err
			}

			var overs []types.Interval

			if oversPath := cmd.String("overs"); oversPath != "" {
				overs, err = readOvers(oversPath)
				if err != nil {
					return err
				}
			}

			opts := trackcheck.DefaultOptions()
			opts.Checks = checks

			result := trackcheck.Analyze(features, overs, opts)

			return outputResult(inputPath, result, cmd.String("format"))
		},
	}
}

//nolint:gochecknoglobals
var checkNames = map[string]trackcheck.Check{
	"energy-arc":          trackcheck.CheckArc,
	"drop-confidence":     trackcheck.CheckDrops,
	"hook":                trackcheck.CheckHook,
	"structural-balance":  trackcheck.CheckBalance,
	"arrangement-density": trackcheck.CheckDensity,
	"dynamics-health":     trackcheck.CheckDynamics,
	"headroom":            trackcheck.CheckHeadroom,
	"streaming-risk":      trackcheck.CheckStreaming,
	// Presets.
	"all":       trackcheck.ChecksAll,
	"structure": trackcheck.ChecksStructure,
	"delivery":  trackcheck.ChecksDelivery,
}

func parseChecks(raw string) (trackcheck.Check, error) {
	var result trackcheck.Check

	for name := range strings.SplitSeq(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		check, ok := checkNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown check %q", name)
		}

		result |= check
	}

	if result == 0 {
		return trackcheck.ChecksAll, nil
	}

	return result, nil
}

func readFeatures(source string) (*types.TrackFeatures, error) {
	var (
		data []byte
		err  error
	)

	if source == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(source) //nolint:gosec // CLI tool reads user-specified feature files
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", source, err)
		}
	}

	var features types.TrackFeatures
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("decoding features: %w", err)
	}

	return &features, nil
}

func readOvers(source string) ([]types.Interval, error) {
	data, err := os.ReadFile(source) //nolint:gosec // CLI tool reads user-specified metric files
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", source, err)
	}

	var overs []types.Interval
	if err := json.Unmarshal(data, &overs); err != nil {
		return nil, fmt.Errorf("decoding overs: %w", err)
	}

	return overs, nil
}
