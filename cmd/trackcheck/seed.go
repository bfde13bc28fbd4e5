//nolint:wrapcheck
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/tonipetergugic/trackcheck/internal/store"
	"github.com/tonipetergugic/trackcheck/internal/store/sqlite"
)

// seedCommand inserts or updates the rows the payload flow reads. It exists
// so a local database can be driven entirely from the CLI.
func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert or update a queue item, its unlock and its private metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "Path to the sqlite database",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "queue",
				Aliases: []string{"q"},
				Usage:   "Queue item id (generated when omitted)",
			},
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "User id",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Review status: pending, approved, rejected",
				Value: string(store.StatusPending),
			},
			&cli.StringFlag{
				Name:     "hash",
				Usage:    "Audio content hash the unlock is pinned to",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "audio",
				Usage: "Path to the source audio file",
			},
			&cli.StringFlag{
				Name:  "overs",
				Usage: "Path to a JSON file with the recorded true-peak-over intervals",
			},
			&cli.BoolFlag{
				Name:  "unlock",
				Usage: "Grant the user an unlock pinned to the given hash",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			adapter, err := sqlite.NewAdapter(cmd.String("db"))
			if err != nil {
				return err
			}
			defer adapter.Close()

			queueID := cmd.String("queue")
			if queueID == "" {
				queueID = uuid.NewString()
			}

			status := store.ReviewStatus(cmd.String("status"))

			item := &store.QueueItem{
				ID:        queueID,
				UserID:    cmd.String("user"),
				Status:    status,
				AudioHash: cmd.String("hash"),
				AudioPath: cmd.String("audio"),
			}

			if err := adapter.PutQueueItem(ctx, item); err != nil {
				return err
			}

			if cmd.Bool("unlock") {
				unlock := &store.Unlock{
					QueueID:   queueID,
					UserID:    cmd.String("user"),
					AudioHash: cmd.String("hash"),
				}

				if err := adapter.PutUnlock(ctx, unlock); err != nil {
					return err
				}
			}

			if oversPath := cmd.String("overs"); oversPath != "" {
				overs, err := readOvers(oversPath)
				if err != nil {
					return err
				}

				metrics := &store.PrivateMetrics{TruePeakOvers: overs}

				if err := adapter.PutPrivateMetrics(ctx, queueID, metrics); err != nil {
					return err
				}
			}

			summary := map[string]string{"queue": queueID, "user": cmd.String("user"), "status": string(status)}

			return json.NewEncoder(os.Stdout).Encode(summary)
		},
	}
}
