package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"filmbridge/internal/reconcile"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 12

func statusColor(status reconcile.Status) string {
	switch status {
	case reconcile.StatusResolved:
		return ansiGreen
	case reconcile.StatusUnresolved:
		return ansiYellow
	case reconcile.StatusFailed:
		return ansiRed
	case reconcile.StatusSkipped:
		return ansiBlue
	default:
		return ""
	}
}

// renderStatus formats a result status, appending the skip reason.
func renderStatus(result reconcile.Result, colorize bool) string {
	label := string(result.Status)
	if result.Reason != "" {
		label = fmt.Sprintf("%s (%s)", label, result.Reason)
	}
	if colorize {
		if color := statusColor(result.Status); color != "" {
			return color + label + ansiReset
		}
	}
	return label
}

func renderCountLine(status reconcile.Status, count int, colorize bool) string {
	base := fmt.Sprintf("  %-*s %d", statusLabelWidth, string(status)+":", count)
	if colorize && count > 0 {
		if color := statusColor(status); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
