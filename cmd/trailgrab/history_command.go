package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"trailgrab/internal/store"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		mediaID int64
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent download attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			var attempts []*store.Attempt
			if mediaID > 0 {
				attempts, err = st.AttemptsForMedia(cmd.Context(), mediaID)
			} else {
				attempts, err = st.RecentAttempts(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No download attempts recorded")
				return nil
			}

			rows := make([][]string, 0, len(attempts))
			for _, attempt := range attempts {
				detail := attempt.OutputPath
				if attempt.Status == store.AttemptFailed {
					detail = attempt.ErrorMessage
				}
				rows = append(rows, []string{
					strconv.FormatInt(attempt.MediaID, 10),
					attempt.StartedAt.Local().Format(time.DateTime),
					string(attempt.Status),
					attempt.SourceID,
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Media", "Started", "Status", "Source", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of attempts to show")
	cmd.Flags().Int64Var(&mediaID, "media-id", 0, "Show history for one media item")

	return cmd
}
