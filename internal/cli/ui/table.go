// Package ui renders CLI output.
package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Status colors used for cells passed to Table.AddStatusRow
var (
	OK   = color.New(color.FgGreen, color.Bold)
	Fail = color.New(color.FgRed, color.Bold)
)

// Table renders aligned columns under a bold header
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]cell
	noColor bool
}

type cell struct {
	text  string
	color *color.Color
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{writer: w, headers: headers, noColor: noColor}
}

// AddRow adds a row of plain cells
func (t *Table) AddRow(cells ...string) {
	row := make([]cell, len(cells))
	for i, c := range cells {
		row[i] = cell{text: c}
	}
	t.rows = append(t.rows, row)
}

// AddStatusRow adds a row whose last cell is printed in c
func (t *Table) AddStatusRow(c *color.Color, cells ...string) {
	t.AddRow(cells...)
	if n := len(cells); n > 0 {
		t.rows[len(t.rows)-1][n-1].color = c
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table. Nothing is written without headers.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if i < len(widths) && utf8.RuneCountInString(c.text) > widths[i] {
				widths[i] = utf8.RuneCountInString(c.text)
			}
		}
	}

	header := t.paint(color.New(color.Bold, color.FgCyan))
	gray := t.paint(color.New(color.FgHiBlack))

	for i, h := range t.headers {
		header.Fprint(t.writer, t.pad(h, widths, i))
	}
	fmt.Fprintln(t.writer)
	for i, w := range widths {
		gray.Fprint(t.writer, t.pad(strings.Repeat("─", w), widths, i))
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			text := t.pad(c.text, widths, i)
			if i == len(row)-1 {
				text = strings.TrimRight(text, " ")
			}
			if c.color != nil {
				t.paint(c.color).Fprint(t.writer, text)
				continue
			}
			fmt.Fprint(t.writer, text)
		}
		fmt.Fprintln(t.writer)
	}
}

// pad right-pads s to the column width and adds the column gap, except on the last column
func (t *Table) pad(s string, widths []int, i int) string {
	if i == len(widths)-1 {
		return s
	}
	if n := widths[i] - utf8.RuneCountInString(s); n > 0 {
		s += strings.Repeat(" ", n)
	}
	return s + "  "
}

func (t *Table) paint(c *color.Color) *color.Color {
	if !t.noColor {
		return c
	}
	plain := *c
	plain.DisableColor()
	return &plain
}

// KeyValue renders "key: value" lines with aligned values
type KeyValue struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValue creates a key/value list
func NewKeyValue(w io.Writer, noColor bool) *KeyValue {
	return &KeyValue{writer: w, noColor: noColor}
}

// Add appends a pair
func (kv *KeyValue) Add(key, value string) {
	kv.keys = append(kv.keys, key)
	kv.values = append(kv.values, value)
}

// Render writes the pairs
func (kv *KeyValue) Render() {
	width := 0
	for _, k := range kv.keys {
		if len(k) > width {
			width = len(k)
		}
	}
	cyan := color.New(color.FgCyan, color.Bold)
	if kv.noColor {
		cyan.DisableColor()
	}
	for i, k := range kv.keys {
		cyan.Fprintf(kv.writer, "%-*s", width+1, k+":")
		fmt.Fprintf(kv.writer, " %s\n", kv.values[i])
	}
}
