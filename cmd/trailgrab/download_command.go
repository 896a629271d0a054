package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trailgrab/internal/discovery"
	"trailgrab/internal/pipeline"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var (
		year        int
		show        bool
		externalID  string
		manualURL   string
		profileName string
		mediaID     int64
		targetDir   string
	)

	cmd := &cobra.Command{
		Use:   "download [title]",
		Short: "Find and download a trailer",
		Long: `Find a trailer for a title and download it into the library.

With --media-id the title, year, and profile come from the stored media
item. With --url discovery is skipped and the given content URL or
identifier is used directly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			req := pipeline.Request{
				ManualURL: manualURL,
				Profile:   cfg.Profile,
				TargetDir: targetDir,
			}

			if mediaID > 0 {
				item, err := st.GetMedia(cmd.Context(), mediaID)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("no media item with id %d", mediaID)
				}
				req.MediaID = item.ID
				req.Query = discovery.Query{
					Title:      item.Title,
					Year:       item.Year,
					IsMovie:    item.IsMovie,
					ExternalID: item.ExternalID,
				}
				req.Excluded = item.ExcludedIDs
				req.Profile, err = st.ProfileForMedia(cmd.Context(), item, cfg.Profile)
				if err != nil {
					return err
				}
			} else {
				if len(args) == 0 {
					return errors.New("a title or --media-id is required")
				}
				req.Query = discovery.Query{
					Title:      args[0],
					Year:       year,
					IsMovie:    !show,
					ExternalID: externalID,
				}
			}

			if profileName != "" {
				profile, err := st.GetProfile(cmd.Context(), profileName)
				if err != nil {
					return err
				}
				if profile == nil {
					return fmt.Errorf("no profile named %q", profileName)
				}
				req.Profile = profile.Settings()
			}

			p, err := pipeline.New(cfg, st, logger)
			if err != nil {
				return err
			}

			result, err := p.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Downloaded %q (%s)\n", result.Info.VideoTitle, result.Info.ContentTitle)
			fmt.Fprintf(out, "Trailer: %s\n", result.TrailerPath)
			if result.Attempts > 1 {
				fmt.Fprintf(out, "Succeeded on attempt %d\n", result.Attempts)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Release year used for match scoring")
	cmd.Flags().BoolVar(&show, "show", false, "Treat the title as a show instead of a movie")
	cmd.Flags().StringVar(&externalID, "external-id", "", "Cross-reference identifier (e.g. IMDb id) for direct lookup")
	cmd.Flags().StringVar(&manualURL, "url", "", "Content URL or identifier; skips discovery")
	cmd.Flags().StringVar(&profileName, "profile", "", "Stored profile name to use instead of the configured default")
	cmd.Flags().Int64Var(&mediaID, "media-id", 0, "Download for a stored media item")
	cmd.Flags().StringVar(&targetDir, "target-dir", "", "Directory for the finished trailer (defaults to the library)")

	return cmd
}
