package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// table: простая таблица с выравниванием по самой длинной ячейке.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	head := color.New(color.Bold, color.FgCyan)
	for i, h := range t.headers {
		if i < len(t.headers)-1 {
			head.Fprint(w, pad(h, widths[i]))
			fmt.Fprint(w, "  ")
		} else {
			head.Fprint(w, h)
		}
	}
	fmt.Fprintln(w)

	gray := color.New(color.FgHiBlack)
	for i, width := range widths {
		gray.Fprint(w, strings.Repeat("-", width))
		if i < len(widths)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)

	for _, row := range t.rows {
		for i := range t.headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i < len(t.headers)-1 {
				fmt.Fprint(w, pad(cell, widths[i]), "  ")
			} else {
				fmt.Fprint(w, cell)
			}
		}
		fmt.Fprintln(w)
	}
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
