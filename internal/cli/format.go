package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// fatih/color disables colors by itself when stdout is not a TTY.
var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
)

// statusColors maps a status to the color it is printed in.
var statusColors = map[string]*color.Color{
	"modified":     warningColor,
	"deleted":      errorColor,
	"not in cache": warningColor,
	"new":          successColor,
	"missing":      errorColor,
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(msg string) {
	_, _ = successColor.Fprintf(os.Stdout, "✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(msg string) {
	_, _ = warningColor.Fprintf(os.Stdout, "⚠ %s\n", msg)
}

// PrintInfo prints an informational message
func PrintInfo(msg string) {
	fmt.Fprintln(os.Stdout, msg)
}

// PrintSubsection prints a subsection header
func PrintSubsection(title string) {
	_, _ = infoColor.Fprintf(os.Stdout, "%s\n", title)
}

// PrintStatusLine prints "<status>: <path>" with the status colored.
func PrintStatusLine(status, path string, indent int) {
	clr, ok := statusColors[status]
	if !ok {
		clr = valueColor
	}
	fmt.Fprint(os.Stdout, strings.Repeat("  ", indent))
	_, _ = clr.Fprintf(os.Stdout, "%-14s", status+":")
	fmt.Fprintln(os.Stdout, path)
}

// PrintList prints a list of items with bullet points
func PrintList(items []string, indent int) {
	indentStr := strings.Repeat("  ", indent)
	for _, item := range items {
		_, _ = infoColor.Fprintf(os.Stdout, "%s• %s\n", indentStr, item)
	}
}

// PrintTable prints a simple two-column table
func PrintTable(headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	// Calculate column widths
	colWidths := make([]int, len(headers))
	for i, header := range headers {
		colWidths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	// Print header
	fmt.Fprint(os.Stdout, "  ")
	for i, header := range headers {
		if i > 0 {
			fmt.Fprint(os.Stdout, "  ")
		}
		_, _ = headerColor.Fprintf(os.Stdout, "%-*s", colWidths[i], header)
	}
	fmt.Fprintln(os.Stdout)

	// Print separator
	fmt.Fprint(os.Stdout, "  ")
	for i, width := range colWidths {
		if i > 0 {
			fmt.Fprint(os.Stdout, "  ")
		}
		fmt.Fprint(os.Stdout, strings.Repeat("-", width))
	}
	fmt.Fprintln(os.Stdout)

	// Print rows
	for _, row := range rows {
		fmt.Fprint(os.Stdout, "  ")
		for i, cell := range row {
			if i >= len(colWidths) {
				break
			}
			if i > 0 {
				fmt.Fprint(os.Stdout, "  ")
			}
			_, _ = labelColor.Fprintf(os.Stdout, "%-*s", colWidths[i], cell)
		}
		fmt.Fprintln(os.Stdout)
	}
}

// PrintEmptyState prints a message when there's no data to show
func PrintEmptyState(msg string) {
	_, _ = dimColor.Fprintf(os.Stdout, "  %s\n", msg)
}

// PrintCount prints a count with proper formatting
func PrintCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
