package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trailgrab/internal/services/mediaserver"
	"trailgrab/internal/store"
)

func newServersCommand(ctx *commandContext) *cobra.Command {
	serversCmd := &cobra.Command{
		Use:   "servers",
		Short: "Inspect configured media servers",
	}

	serversCmd.AddCommand(newServersListCommand(ctx))
	serversCmd.AddCommand(newServersTestCommand(ctx))

	return serversCmd
}

func newServersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List media servers and their last known state",
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

			statuses, err := st.ListServerStatus(cmd.Context())
			if err != nil {
				return err
			}
			known := make(map[string]store.ServerStatus, len(statuses))
			for _, status := range statuses {
				known[status.Name] = status
			}

			out := cmd.OutOrStdout()
			if len(cfg.MediaServers) == 0 {
				fmt.Fprintln(out, "No media servers configured")
				return nil
			}

			rows := make([][]string, 0, len(cfg.MediaServers))
			for _, server := range cfg.MediaServers {
				state := "never checked"
				if status, ok := known[server.Name]; ok && status.LastChecked != nil {
					if status.Reachable {
						state = "reachable"
					} else if status.LastError != "" {
						state = status.LastError
					} else {
						state = "unreachable"
					}
					state = fmt.Sprintf("%s (%s)", state, status.LastChecked.Local().Format(time.DateTime))
				}
				rows = append(rows, []string{
					server.Name,
					server.Type,
					server.URL,
					yesNo(server.Enabled),
					state,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Type", "URL", "Enabled", "Last check"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newServersTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Probe every configured media server",
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

			out := cmd.OutOrStdout()
			if len(cfg.MediaServers) == 0 {
				fmt.Fprintln(out, "No media servers configured")
				return nil
			}

			results := mediaserver.TestAll(cmd.Context(), cfg.MediaServers, nil)
			rows := make([][]string, 0, len(results))
			failures := 0
			for _, result := range results {
				detail := "ok"
				errMsg := ""
				if result.Err != nil {
					detail = result.Err.Error()
					errMsg = detail
					failures++
				}
				rows = append(rows, []string{
					result.Name,
					result.Type,
					yesNo(result.Enabled),
					yesNo(result.Reachable),
					detail,
				})
				if err := st.UpsertServerStatus(cmd.Context(), store.ServerStatus{
					Name:      result.Name,
					Type:      result.Type,
					URL:       result.URL,
					Enabled:   result.Enabled,
					Reachable: result.Reachable,
					LastError: errMsg,
				}); err != nil {
					return err
				}
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Type", "Enabled", "Reachable", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			if failures > 0 {
				return fmt.Errorf("%d of %d media servers failed the connection test", failures, len(results))
			}
			return nil
		},
	}
}
