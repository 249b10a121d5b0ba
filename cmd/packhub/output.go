package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

// resolveOutput combines --output with the global --json flag. An explicit
// --output wins.
func resolveOutput(ctx *commandContext, value string) (outputFormat, error) {
	switch outputFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		if ctx.JSONMode() {
			return outputJSON, nil
		}
		return outputTable, nil
	case outputTable:
		return outputTable, nil
	case outputJSON:
		return outputJSON, nil
	case outputYAML, "yml":
		return outputYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want table, json or yaml)", value)
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML renders v through its JSON tags so both formats share field names.
func writeYAML(cmd *cobra.Command, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func writeStructured(cmd *cobra.Command, format outputFormat, v any) error {
	if format == outputYAML {
		return writeYAML(cmd, v)
	}
	return writeJSON(cmd, v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
