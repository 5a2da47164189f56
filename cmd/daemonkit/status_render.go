package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"daemonkit/internal/daemonctl"
	"daemonkit/internal/pidfile"
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

// renderStatus builds the verbose status view: a header, the state line and a
// details table.
func renderStatus(st daemonctl.Status, logPath string, colorize bool) []string {
	lines := renderSectionHeader("Daemon Status", colorize)
	lines = append(lines, renderStatusLine("State", stateKind(st), st.State.String(), colorize))
	lines = append(lines, statusIndent+st.Message)

	details := []detail{
		{"PID file", st.Path},
		{"Found", st.Outcome.String()},
		{"Log file", logPath},
	}
	if st.Running() {
		details = append(details,
			detail{"PID", strconv.Itoa(st.PID)},
			detail{"Same user", yesNo(!st.Restricted)},
		)
		if cmdline, err := pidfile.CommandLine(st.PID); err == nil {
			details = append(details, detail{"Command", cmdline})
		}
	}
	return append(lines, renderDetails(details, colorize)...)
}

func stateKind(st daemonctl.Status) statusKind {
	switch {
	case st.Running() && st.Restricted:
		return statusWarn
	case st.Running():
		return statusOK
	case st.Outcome == pidfile.Stale || st.Outcome == pidfile.Empty:
		return statusWarn
	default:
		return statusInfo
	}
}

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

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
