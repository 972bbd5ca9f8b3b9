package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"tvshelf/internal/textutil"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// stateKinds classifies the state labels printed in result tables.
var stateKinds = map[string]statusKind{
	"parsed":             statusOK,
	"got_listings":       statusOK,
	"renamed":            statusOK,
	"copied":             statusOK,
	"already_in_place":   statusOK,
	"misnamed":           statusWarn,
	"unfound":            statusWarn,
	"no_match":           statusWarn,
	"no_listings":        statusWarn,
	"unmoved":            statusWarn,
	"ignored":            statusWarn,
	"copied_not_cleaned": statusWarn,
	"conflict":           statusWarn,
	"bad_parse":          statusError,
	"unparsed":           statusError,
	"fail_to_move":       statusError,
	"failed":             statusError,
	"missing":            statusError,
	"no_file":            statusError,
	"cancelled":          statusError,
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

// renderState colours a state label for terminals.
func renderState(label string, colorize bool) string {
	kind, ok := stateKinds[label]
	if !ok {
		kind = statusInfo
	}
	return textutil.Ternary(colorize, statusKindColor(kind)+label+ansiReset, label)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
