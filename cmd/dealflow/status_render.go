package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"dealflow/internal/store"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

var statusColors = map[statusKind]text.Colors{
	statusInfo:  {text.FgBlue},
	statusOK:    {text.FgGreen},
	statusWarn:  {text.FgYellow},
	statusError: {text.FgRed},
}

func colorizeText(value string, kind statusKind, colorize bool) string {
	if !colorize {
		return value
	}
	return statusColors[kind].Sprint(value)
}

func evaluationStatusKind(status store.Status) statusKind {
	switch status {
	case store.StatusCompleted:
		return statusOK
	case store.StatusNeedsReview:
		return statusWarn
	case store.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.1f", score)
}
