package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"specmix/internal/ingest"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label string
	color text.Colors
}{
	statusInfo:  {"INFO", text.Colors{text.FgBlue}},
	statusOK:    {"OK", text.Colors{text.FgGreen}},
	statusWarn:  {"WARN", text.Colors{text.FgYellow}},
	statusError: {"ERROR", text.Colors{text.FgRed}},
}

// renderStatusLine formats "  Label:   [KIND] message" with the label padded
// to a fixed width. The whole line is colored when colorize is set.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	status := "[" + style.label + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("  %-20s %s", label+":", status)
	if colorize {
		return style.color.Sprint(line)
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	lines := []string{heading, strings.Repeat("-", len(heading))}
	if colorize {
		for i := range lines {
			lines[i] = text.FgBlue.Sprint(lines[i])
		}
	}
	return lines
}

// ingestReportLines summarizes an ingestion report: column roles first, then
// one warning per advisory.
func ingestReportLines(report *ingest.Report, colorize bool) []string {
	if report == nil {
		return nil
	}
	lines := []string{
		renderStatusLine("Format", statusInfo, string(report.Format), colorize),
		renderStatusLine("Wavenumber column", statusInfo, report.Columns.Wavenumber, colorize),
		renderStatusLine("Emissivity column", statusInfo, report.Columns.Emissivity, colorize),
	}
	if report.Columns.Synthesized {
		lines = append(lines, renderStatusLine("Uncertainty column", statusWarn, "synthesized", colorize))
	} else if report.Columns.Uncertainty != "" {
		lines = append(lines, renderStatusLine("Uncertainty column", statusInfo, report.Columns.Uncertainty, colorize))
	}
	pointsKind := statusOK
	if report.HasAdvisory(ingest.AdvisoryFewPoints) {
		pointsKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Points", pointsKind,
		fmt.Sprintf("%d of %d rows kept", report.Points, report.InputRows), colorize))
	for _, advisory := range report.Advisories {
		lines = append(lines, renderStatusLine(advisoryLabel(advisory.Code), statusWarn, advisory.Message, colorize))
	}
	return lines
}

func advisoryLabel(code string) string {
	label := strings.ReplaceAll(code, "_", " ")
	if label == "" {
		return "Advisory"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
