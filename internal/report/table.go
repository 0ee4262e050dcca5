package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/signalnine/tribunal/internal/aggregate"
)

var printer = message.NewPrinter(language.English)

const columnGap = 2

// cell formats one metric of a summary as "mean ±stddev", or "-" when the
// group never observed the metric.
func cell(s aggregate.Summary, metric string) string {
	mean, ok := s.Mean[metric]
	if !ok {
		return "-"
	}
	return printer.Sprintf("%.3f ±%.3f", mean, s.StdDev[metric])
}

func count(n int) string {
	return printer.Sprintf("%d", n)
}

// grid lays the section out as a header row followed by one row per group.
func grid(sec *Section) [][]string {
	header := append([]string{strings.ToUpper(sec.Group), "RESULTS"}, sec.Metrics...)
	rows := [][]string{header}
	for _, r := range sec.Rows {
		row := []string{r.Key, count(r.Summary.Count)}
		for _, m := range sec.Metrics {
			row = append(row, cell(r.Summary, m))
		}
		rows = append(rows, row)
	}
	return rows
}

func writeTable(sec *Section, w io.Writer, maxWidth int) error {
	rows := grid(sec)
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	total := 0
	for _, wd := range widths {
		total += wd + columnGap
	}
	total -= columnGap
	sep := total
	if maxWidth > 0 && maxWidth < sep {
		sep = maxWidth
	}

	for i, row := range rows {
		var b strings.Builder
		for j, c := range row {
			if j == len(row)-1 {
				b.WriteString(c)
				break
			}
			b.WriteString(padRight(c, widths[j]+columnGap))
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
		if i == 0 {
			if _, err := fmt.Fprintln(w, strings.Repeat("-", sep)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMarkdown(sec *Section, w io.Writer) error {
	_, err := io.WriteString(w, markdown(sec))
	return err
}

func markdown(sec *Section) string {
	rows := grid(sec)
	var b strings.Builder
	for i, row := range rows {
		b.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
		if i == 0 {
			b.WriteString("|" + strings.Repeat("---|", len(row)) + "\n")
		}
	}
	return b.String()
}

func escapeCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// padRight pads s with spaces so its display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
