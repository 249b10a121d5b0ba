package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"packhub/internal/trainingpack"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, formatError(err))
		}
		os.Exit(1)
	}
}

// formatError prefixes metadata decode failures with their kind so scripts
// can tell a truncated payload from a bad header.
func formatError(err error) string {
	if kind, ok := trainingpack.KindOf(err); ok {
		return fmt.Sprintf("error [%s]: %v", kind, err)
	}
	return fmt.Sprintf("error: %v", err)
}
