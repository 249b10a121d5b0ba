package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"packhub/internal/trainingpack"
)

const summaryLabelWidth = 10

func writeSummaryLine(out io.Writer, label, value string) {
	fmt.Fprintf(out, "%-*s %s\n", summaryLabelWidth, label+":", value)
}

func renderPack(out io.Writer, pack *trainingpack.Pack) {
	if pack == nil {
		return
	}
	writeSummaryLine(out, "Name", pack.Name)
	if pack.Code != "" {
		writeSummaryLine(out, "Code", pack.Code)
	}
	writeSummaryLine(out, "Shots", strconv.Itoa(pack.ShotCount))
	writeSummaryLine(out, "Bits", strconv.Itoa(pack.Bits))
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderShots(pack.Shots))
}

// shortKey keeps list output narrow for long fingerprints.
func shortKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	return key
}

func fallback(value, alt string) string {
	if strings.TrimSpace(value) == "" {
		return alt
	}
	return value
}
