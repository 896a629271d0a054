package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trailgrab/internal/store"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage download profiles",
	}

	profileCmd.AddCommand(newProfileSaveCommand(ctx))
	profileCmd.AddCommand(newProfileListCommand(ctx))
	profileCmd.AddCommand(newProfileRemoveCommand(ctx))

	return profileCmd
}

func newProfileSaveCommand(ctx *commandContext) *cobra.Command {
	var (
		maxResolution  int
		audioLanguage  string
		videoCodec     string
		audioCodec     string
		container      string
		keepMonitoring bool
		minSizeBytes   int64
	)

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Create or update a download profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			profile, err := st.SaveProfile(cmd.Context(), &store.Profile{
				Name:           args[0],
				MaxResolution:  maxResolution,
				AudioLanguage:  audioLanguage,
				VideoCodec:     videoCodec,
				AudioCodec:     audioCodec,
				Container:      container,
				StopMonitoring: !keepMonitoring,
				MinSizeBytes:   minSizeBytes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %q\n", profile.Name)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxResolution, "max-resolution", 0, "Maximum video height (0 takes the best available)")
	cmd.Flags().StringVar(&audioLanguage, "language", "en", "Preferred audio language")
	cmd.Flags().StringVar(&videoCodec, "video-codec", "copy", "Target video codec")
	cmd.Flags().StringVar(&audioCodec, "audio-codec", "copy", "Target audio codec")
	cmd.Flags().StringVar(&container, "container", "mkv", "Output container")
	cmd.Flags().BoolVar(&keepMonitoring, "keep-monitoring", false, "Keep watching the item after a successful download")
	cmd.Flags().Int64Var(&minSizeBytes, "min-size", 102400, "Minimum output size in bytes")

	return cmd
}

func newProfileListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List download profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			profiles, err := st.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No stored profiles; the configured default applies:")
				profiles = []*store.Profile{store.DefaultProfile(cfg.Profile)}
			}

			rows := make([][]string, 0, len(profiles))
			for _, profile := range profiles {
				resolution := "best"
				if profile.MaxResolution > 0 {
					resolution = strconv.Itoa(profile.MaxResolution) + "p"
				}
				rows = append(rows, []string{
					profile.Name,
					resolution,
					profile.AudioLanguage,
					profile.VideoCodec + "/" + profile.AudioCodec,
					profile.Container,
					yesNo(profile.StopMonitoring),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Resolution", "Language", "Codecs", "Container", "Stop monitoring"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newProfileRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a download profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			removed, err := st.RemoveProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no profile named %q", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %q\n", args[0])
			return nil
		},
	}
}
