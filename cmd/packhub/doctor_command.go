package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"packhub/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const statusLabelWidth = 18

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, configuration and the pack cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			if ctx.JSONMode() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, r := range results {
					fmt.Fprintln(out, renderCheckLine(r, colorize))
				}
			}

			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

func renderCheckLine(r preflight.Result, colorize bool) string {
	status, color := "OK", ansiGreen
	if !r.Passed {
		status, color = "FAIL", ansiRed
	}
	line := fmt.Sprintf("  %-*s [%s] %s", statusLabelWidth, r.Name+":", status, r.Detail)
	if colorize {
		return color + line + ansiReset
	}
	return line
}
