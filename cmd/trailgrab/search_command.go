package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trailgrab/internal/catalog"
	"trailgrab/internal/discovery"
	"trailgrab/internal/fetch"
	"trailgrab/internal/hls"
	"trailgrab/internal/language"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		year       int
		show       bool
		externalID string
		streams    bool
	)

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Find a trailer without downloading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			httpClient := fetch.New(time.Duration(cfg.Catalog.RequestTimeout)*time.Second, logger)
			client := catalog.NewClient(cfg.Catalog, httpClient, logger)
			client.Authenticate(cmd.Context())
			engine := discovery.NewEngine(client, httpClient, cfg.Search, logger)

			query := discovery.Query{
				Title:      args[0],
				Year:       year,
				IsMovie:    !show,
				ExternalID: externalID,
			}
			info, err := engine.Find(cmd.Context(), query, discovery.NewExclusionSet())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:        %s\n", info.ContentTitle)
			fmt.Fprintf(out, "Trailer:      %s\n", info.VideoTitle)
			fmt.Fprintf(out, "Source id:    %s\n", info.SourceID)
			fmt.Fprintf(out, "Release date: %s\n", info.ReleaseDate)
			if len(info.Genres) > 0 {
				fmt.Fprintf(out, "Genres:       %s\n", strings.Join(info.Genres, ", "))
			}
			fmt.Fprintf(out, "Manifest:     %s\n", info.HLSURL)

			if !streams {
				return nil
			}

			parsed, err := hls.Load(cmd.Context(), httpClient, info.HLSURL)
			if err != nil {
				return err
			}

			videoRows := make([][]string, 0, len(parsed.Video))
			for _, v := range parsed.Video {
				videoRows = append(videoRows, []string{
					fmt.Sprintf("%dx%d", v.Width, v.Height),
					v.Codec,
					v.VideoRange,
					strconv.FormatFloat(v.FPS, 'f', -1, 64),
					v.Bitrate,
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Resolution", "Codec", "Range", "FPS", "Bitrate"},
				videoRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))

			audioRows := make([][]string, 0, len(parsed.Audio))
			for _, a := range parsed.Audio {
				audioRows = append(audioRows, []string{
					fmt.Sprintf("%s (%s)", language.DisplayName(a.Language), a.Language),
					a.Codec,
					a.Channels,
					a.Bitrate,
					yesNo(a.IsAD),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Language", "Codec", "Channels", "Bitrate", "AD"},
				audioRows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Release year used for match scoring")
	cmd.Flags().BoolVar(&show, "show", false, "Treat the title as a show instead of a movie")
	cmd.Flags().StringVar(&externalID, "external-id", "", "Cross-reference identifier for direct lookup")
	cmd.Flags().BoolVar(&streams, "streams", false, "Also list the manifest's video and audio renditions")

	return cmd
}
