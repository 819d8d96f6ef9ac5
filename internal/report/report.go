// Package report renders resolved rates for the terminal and answers the
// per-ZIP lookups requested on the command line.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kingrea/slcsp/internal/rates"
)

var (
	// ErrMalformedZip is reported for lookup arguments that are not all digits.
	ErrMalformedZip = errors.New("zip code must contain only digits")
	// ErrUnknownZip is reported for lookup arguments absent from the output.
	ErrUnknownZip = errors.New("zip code not in output")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// Render draws rows as a two-column zipcode/rate table.
func Render(rows []rates.OutputRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("zipcode", "rate")
	for _, row := range rows {
		t.Row(row.Zipcode, row.FormattedRate())
	}
	t.StyleFunc(func(r, c int) lipgloss.Style {
		if r == table.HeaderRow {
			return headerStyle
		}
		return cellStyle.Align(alignFor(c))
	})
	return t.String()
}

func alignFor(col int) lipgloss.Position {
	if col == 1 {
		return lipgloss.Right
	}
	return lipgloss.Left
}

// Lookup is the answer to one command-line ZIP argument.
type Lookup struct {
	Arg  string
	Rows []rates.OutputRow
	Err  error
}

// Select resolves each argument against rows, in argument order. A bad
// argument yields a Lookup with Err set and does not stop the others.
func Select(rows []rates.OutputRow, args []string) []Lookup {
	out := make([]Lookup, 0, len(args))
	for _, arg := range args {
		zip := strings.TrimSpace(arg)
		lookup := Lookup{Arg: arg}
		if !isDigits(zip) {
			lookup.Err = ErrMalformedZip
			out = append(out, lookup)
			continue
		}
		for _, row := range rows {
			if sameZip(row.Zipcode, zip) {
				lookup.Rows = append(lookup.Rows, row)
			}
		}
		if len(lookup.Rows) == 0 {
			lookup.Err = ErrUnknownZip
		}
		out = append(out, lookup)
	}
	return out
}

// WriteLookups prints a table per successful lookup and a re-check notice for
// each failed one.
func WriteLookups(w io.Writer, lookups []Lookup) error {
	for _, l := range lookups {
		var err error
		if l.Err != nil {
			_, err = fmt.Fprintf(w, "\nPlease re-check the zipcode: %s\n\n", l.Arg)
		} else {
			_, err = fmt.Fprintln(w, Render(l.Rows))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// SummaryLine describes how many rows received a rate, with grouped digits.
func SummaryLine(s rates.Summary) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("resolved %d of %d zip codes (%d blank)", s.Resolved, s.Total, s.Blank)
}

// sameZip compares ZIP codes numerically, so 2108 finds 02108.
func sameZip(a, b string) bool {
	return strings.TrimLeft(strings.TrimSpace(a), "0") == strings.TrimLeft(b, "0")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
