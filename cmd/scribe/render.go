package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"

	checkLabelWidth = 24
)

// renderCheckLine formats one preflight check as "  Label:  [OK] detail".
func renderCheckLine(label string, passed bool, detail string, colorize bool) string {
	status := "[FAIL]"
	color := ansiRed
	if passed {
		status = "[OK]"
		color = ansiGreen
	}
	if detail != "" {
		status = fmt.Sprintf("%s %s", status, detail)
	}
	line := fmt.Sprintf("  %-*s %s", checkLabelWidth, label+":", status)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
