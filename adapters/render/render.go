// Package render turns report tables and styled views into HTML and
// Markdown for the web UI and file export.
package render

import (
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"fairlens/domain/core"
	"fairlens/domain/table"
	"fairlens/internal/flagger"
)

var styledTmpl = template.Must(template.New("styled").Parse(`<table class="report">
<caption>{{.Caption}}</caption>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}{{if .Flagged}}<td style="{{$.Style}}">{{.Text}}</td>{{else}}<td>{{.Text}}</td>{{end}}{{end}}</tr>
{{- end}}
</tbody>
</table>
`))

type styledCell struct {
	Text    string
	Flagged bool
}

type styledView struct {
	Caption string
	Style   template.CSS
	Headers []string
	Rows    [][]styledCell
}

// HTML renders a styled view as an HTML table. Flagged cells carry the
// view's highlight style inline.
func HTML(s *flagger.Styled) (string, error) {
	view := styledView{
		Caption: s.Caption,
		Style:   template.CSS(s.Style),
		Headers: s.Table.Columns(),
	}
	for row := 0; row < s.Table.NumRows(); row++ {
		cells := make([]styledCell, 0, len(view.Headers))
		for _, col := range view.Headers {
			cells = append(cells, styledCell{
				Text:    cellText(s.Table.Cell(col, row)),
				Flagged: s.Flagged(row, col),
			})
		}
		view.Rows = append(view.Rows, cells)
	}

	var b strings.Builder
	if err := styledTmpl.Execute(&b, view); err != nil {
		return "", core.Wrap(err, "rendering styled report")
	}
	return b.String(), nil
}

// Markdown renders a report table as a GitHub-style pipe table.
func Markdown(t *table.Table) string {
	cols := t.Columns()
	var b strings.Builder
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for row := 0; row < t.NumRows(); row++ {
		cells := make([]string, 0, len(cols))
		for _, col := range cols {
			cells = append(cells, escapePipes(cellText(t.Cell(col, row))))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// MarkdownHTML renders a report table to HTML by way of its Markdown
// form, so exported tables match the docs pipeline's output.
func MarkdownHTML(t *table.Table) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return string(markdown.ToHTML([]byte(Markdown(t)), p, renderer))
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func cellText(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		if math.IsNaN(c) {
			return "NaN"
		}
		return strconv.FormatFloat(c, 'g', -1, 64)
	default:
		return table.CellString(v)
	}
}
