package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"packhub/internal/api"
)

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var (
		filePath string
		packID   string
		mode     string
		output   string
		noCache  bool
		trace    bool
	)

	cmd := &cobra.Command{
		Use:   "decode [payload|-]",
		Short: "Decode Base64 training pack metadata",
		Long: `Decode Base64 training pack metadata into shot records.

The payload is read from the first argument, from --file, or from stdin when
the argument is "-" or omitted. Results are cached by --pack-id when given,
otherwise by a fingerprint of the metadata bytes.

Examples:
  packhub decode "$(cat pack.b64)"
  packhub decode --file pack.b64 --output json
  packhub decode - --mode permissive --trace < pack.b64`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutput(ctx, output)
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd, args, filePath)
			if err != nil {
				return err
			}

			svc, closeCache, err := ctx.decodeService(cmd, !noCache)
			if err != nil {
				return err
			}
			defer closeCache()

			result, err := svc.Decode(cmd.Context(), api.DecodeRequest{
				PackID:    packID,
				Payload:   payload,
				Mode:      mode,
				Trace:     trace,
				SkipCache: noCache,
			})
			if err != nil {
				return err
			}

			if format != outputTable {
				return writeStructured(cmd, format, result)
			}
			out := cmd.OutOrStdout()
			writeSummaryLine(out, "Key", result.Key)
			writeSummaryLine(out, "Source", result.Source)
			renderPack(out, result.Pack)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read the payload from a file")
	cmd.Flags().StringVar(&packID, "pack-id", "", "Hub pack identifier used as the cache key")
	cmd.Flags().StringVar(&mode, "mode", "", "Overrun policy: strict or permissive (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the decoded pack cache")
	cmd.Flags().BoolVar(&trace, "trace", false, "Log every decoded field (implies --verbose)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if trace && ctx.verboseFlag != nil {
			*ctx.verboseFlag = true
		}
	}
	return cmd
}

func readPayload(cmd *cobra.Command, args []string, filePath string) (string, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath != "" && len(args) > 0 && args[0] != "-" {
		return "", errors.New("pass the payload as an argument or with --file, not both")
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read payload file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read payload from stdin: %w", err)
	}
	return string(data), nil
}
