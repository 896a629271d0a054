package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trailgrab/internal/deps"
	"trailgrab/internal/preflight"
	"trailgrab/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show system readiness and library status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("System Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusError
				if result.Passed {
					kind = statusOK
				}
				fmt.Fprintln(stdout, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(preflight.CheckSystemDeps(cfg), colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Library Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderStatusLine("Database", statusInfo, st.Path(), colorize))
			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}
			rows := buildStatsRows(stats)
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No media items tracked")
				return nil
			}
			fmt.Fprint(stdout, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses))
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func buildStatsRows(stats map[store.Status]int) [][]string {
	rows := make([][]string, 0, len(stats))
	for status, count := range stats {
		if count == 0 {
			continue
		}
		rows = append(rows, []string{string(status), strconv.Itoa(count)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return rows
}
