package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/satishgoda/watchtower/internal/colors"
	"github.com/satishgoda/watchtower/internal/session"
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

const (
	statusLabelWidth = 12
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

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

func stageStatusLine(res session.StageResult, colorize bool) string {
	detail := res.Duration.Round(time.Microsecond).String()
	switch res.Status {
	case session.StatusOK:
		return renderStatusLine(res.Stage, statusOK, detail, colorize)
	case session.StatusSuperseded:
		return renderStatusLine(res.Stage, statusWarn, "superseded", colorize)
	default:
		return renderStatusLine(res.Stage, statusError, fmt.Sprintf("%s: %s", res.ErrorKind, res.Error), colorize)
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

// swatch renders a color as its hex code, preceded by a true-color block on
// terminals.
func swatch(c colors.Color, colorize bool) string {
	hex := c.Hex()
	if !colorize {
		return hex
	}
	r, g, b := channel(c[0]), channel(c[1]), channel(c[2])
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm  %s %s", r, g, b, ansiReset, hex)
}

func channel(v float32) int {
	n := int(v*255 + 0.5)
	return max(0, min(255, n))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
