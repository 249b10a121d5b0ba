package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"packhub/internal/api"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "inspect <upload.json|->",
		Short: "Validate a plugin upload body and show its decoded pack",
		Long: `Validate a plugin upload body the way the hub does on upload.

Every rule violation is reported at once. When the upload is valid the
decoded metadata is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutput(ctx, output)
			if err != nil {
				return err
			}
			upload, err := readUpload(cmd, args[0])
			if err != nil {
				return err
			}

			svc, closeCache, err := ctx.decodeService(cmd, true)
			if err != nil {
				return err
			}
			defer closeCache()

			validated, err := svc.ValidateUpload(cmd.Context(), upload)
			var verr *api.ValidationError
			if errors.As(err, &verr) {
				if format != outputTable {
					if writeErr := writeStructured(cmd, format, map[string]any{
						"valid":      false,
						"violations": verr.Violations,
					}); writeErr != nil {
						return writeErr
					}
				} else {
					renderViolations(cmd.OutOrStdout(), verr.Violations)
				}
				return fmt.Errorf("upload invalid: %d violation(s)", len(verr.Violations))
			}
			if err != nil {
				return err
			}

			if format != outputTable {
				return writeStructured(cmd, format, map[string]any{
					"valid":  true,
					"upload": validated.Upload,
					"key":    validated.Key,
					"pack":   validated.Pack,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Upload valid")
			writeSummaryLine(out, "Visibility", string(validated.Upload.Visibility))
			if len(validated.Upload.Tags) > 0 {
				writeSummaryLine(out, "Tags", fmt.Sprint(validated.Upload.Tags))
			}
			renderPack(out, validated.Pack)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json or yaml")
	return cmd
}

func readUpload(cmd *cobra.Command, path string) (api.Upload, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return api.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	var upload api.Upload
	if err := json.Unmarshal(data, &upload); err != nil {
		return api.Upload{}, fmt.Errorf("parse upload json: %w", err)
	}
	return upload, nil
}

func renderViolations(out io.Writer, violations []api.Violation) {
	rows := make([][]string, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, []string{v.Field, v.Message})
	}
	fmt.Fprintln(out, renderTable(violationColumns, rows))
}
