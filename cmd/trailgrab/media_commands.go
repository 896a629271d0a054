package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trailgrab/internal/store"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Manage watched media items",
	}

	mediaCmd.AddCommand(newMediaAddCommand(ctx))
	mediaCmd.AddCommand(newMediaListCommand(ctx))
	mediaCmd.AddCommand(newMediaRemoveCommand(ctx))

	return mediaCmd
}

func newMediaAddCommand(ctx *commandContext) *cobra.Command {
	var (
		year        int
		show        bool
		externalID  string
		profileName string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Watch a title for a trailer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			item, err := st.AddMedia(cmd.Context(), &store.MediaItem{
				Title:       args[0],
				Year:        year,
				IsMovie:     !show,
				ExternalID:  externalID,
				ProfileName: profileName,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (id %d)\n", item.Title, item.ID)
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Release year")
	cmd.Flags().BoolVar(&show, "show", false, "Treat the title as a show instead of a movie")
	cmd.Flags().StringVar(&externalID, "external-id", "", "Cross-reference identifier")
	cmd.Flags().StringVar(&profileName, "profile", "", "Stored profile to apply when downloading")

	return cmd
}

func newMediaListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List watched media items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			var items []*store.MediaItem
			if statusFilter != "" {
				status := store.Status(statusFilter)
				if !store.ValidStatus(status) {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				items, err = st.ListMedia(cmd.Context(), status)
			} else {
				items, err = st.ListMedia(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No media items")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				kind := "movie"
				if !item.IsMovie {
					kind = "show"
				}
				yearStr := ""
				if item.Year > 0 {
					yearStr = strconv.Itoa(item.Year)
				}
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					item.Title,
					yearStr,
					kind,
					string(item.Status),
					item.TrailerPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Year", "Kind", "Status", "Trailer"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show items with this status")

	return cmd
}

func newMediaRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Stop watching a media item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid media id %q", args[0])
			}
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			removed, err := st.RemoveMedia(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no media item with id %d", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed media item %d\n", id)
			return nil
		},
	}
}
