package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Render writes the summary as aligned plain-text tables.
func (s Summary) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := &printer{w: tw}

	p.linef("Shape: %s", s.Shape)
	p.section("Head")
	p.row(append([]string{"index"}, s.Head.Names()...)...)
	for r := 0; r < s.Head.NumRows(); r++ {
		cells := []string{strconv.Itoa(s.Head.Label(r))}
		for _, c := range s.Head.Columns() {
			cells = append(cells, cell(c.Str(r), c.IsMissing(r)))
		}
		p.row(cells...)
	}

	p.section("Info")
	p.row("column", "kind", "non-null")
	for _, c := range s.Info {
		p.row(c.Name, c.Kind.String(), strconv.Itoa(c.NonNull))
	}

	p.section("Describe")
	p.row("column", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, d := range s.Describe {
		p.row(d.Column, strconv.Itoa(d.Count), num(d.Mean), num(d.Std), num(d.Min),
			num(d.Q25), num(d.Q50), num(d.Q75), num(d.Max))
	}

	p.section("Missing values by column")
	p.row("column", "missing", "percent")
	for _, c := range s.Nulls.Columns {
		p.row(c.Column, strconv.Itoa(c.Missing), num(c.Percent))
	}

	p.section("Missing values by row")
	p.row("missing", "percent", "rows")
	for _, g := range s.Nulls.Rows {
		p.row(strconv.Itoa(g.MissingCount), num(g.MissingPercent), strconv.Itoa(g.Rows))
	}

	p.section("Value counts")
	for _, vc := range s.ValueCounts {
		p.linef("%s (%s, %d missing)", vc.Column, vc.Kind, vc.Missing)
		for _, v := range vc.Values {
			p.row("  "+v.Value, strconv.Itoa(v.Count))
		}
		for _, b := range vc.Bins {
			p.row(fmt.Sprintf("  (%s, %s]", num(b.Lower), num(b.Upper)), strconv.Itoa(b.Count))
		}
	}

	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) linef(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
	}
}

func (p *printer) section(title string) {
	p.linef("\n%s:", title)
}

func (p *printer) row(cells ...string) {
	p.linef("%s", strings.Join(cells, "\t"))
}

func cell(s string, missing bool) string {
	if missing {
		return "NaN"
	}
	return s
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
