// Package report assembles the HTML payloads for notification requests:
// the single-item summary emitted by immediate corrective checks and the
// consolidated table produced at the end of a batch run.
package report

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/shelfcheck/item-audit/internal/domain"
)

var singleItemTmpl = template.Must(template.New("single").Parse(`
<table>
	<caption>{{.Caption}}</caption>
	<thead>
		<tr>
			<th>Title</th>
			<th>Author</th>
			<th>Barcode</th>
		</tr>
	</thead>
	<tbody>
		<tr>
			<td>{{.Title}}</td>
			<td>{{.Author}}</td>
			<td>{{.Barcode}}</td>
		</tr>
	</tbody>
</table>
`))

var consolidatedTmpl = template.Must(template.New("consolidated").Parse(`
<table style="width: 100%; border-collapse: collapse; font-family: sans-serif;">
	<caption style="font-size: 1.2em; margin: 0.5em 0; font-weight: bold;">{{.Caption}}</caption>
	<thead style="background-color: #f2f2f2;">
		<tr>
			<th style="padding: 8px; border: 1px solid #ddd; text-align: left;">Title</th>
			<th style="padding: 8px; border: 1px solid #ddd; text-align: left;">Author</th>
			<th style="padding: 8px; border: 1px solid #ddd; text-align: left;">Barcode</th>
			<th style="padding: 8px; border: 1px solid #ddd; text-align: left;">Item Call Number</th>
			<th style="padding: 8px; border: 1px solid #ddd; text-align: left;">Internal Note</th>
		</tr>
	</thead>
	<tbody>
	{{- range .Rows}}
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;">{{.Title}}</td>
			<td style="padding: 8px; border: 1px solid #ddd;">{{.Author}}</td>
			<td style="padding: 8px; border: 1px solid #ddd;">{{.Barcode}}</td>
			<td style="padding: 8px; border: 1px solid #ddd;">{{.CallNumber}}</td>
			<td style="padding: 8px; border: 1px solid #ddd;">{{.Note}}</td>
		</tr>
	{{- end}}
	</tbody>
</table>
`))

type row struct {
	Title      string
	Author     string
	Barcode    string
	CallNumber string
	Note       string
}

// SingleItem renders the one-row summary sent after an immediate correction.
func SingleItem(check *domain.CheckConfig, item *domain.Item) (string, error) {
	var b strings.Builder
	err := singleItemTmpl.Execute(&b, struct {
		Caption, Title, Author, Barcode string
	}{
		Caption: check.EmailSubject,
		Title:   orNone(item.Title),
		Author:  orNone(item.Author),
		Barcode: orNone(item.Barcode),
	})
	if err != nil {
		return "", fmt.Errorf("render single-item report: %w", err)
	}
	return b.String(), nil
}

// Consolidated renders the end-of-run table of all still-failing items.
func Consolidated(check *domain.CheckConfig, items []*domain.Item) (string, error) {
	rows := make([]row, len(items))
	for i, item := range items {
		rows[i] = row{
			Title:      orNone(item.Title),
			Author:     orNone(item.Author),
			Barcode:    orNone(item.Barcode),
			CallNumber: orNone(item.AltCallNumber),
			Note:       orNone(item.InternalNote),
		}
	}

	var b strings.Builder
	err := consolidatedTmpl.Execute(&b, struct {
		Caption string
		Rows    []row
	}{Caption: check.EmailSubject, Rows: rows})
	if err != nil {
		return "", fmt.Errorf("render consolidated report: %w", err)
	}
	return b.String(), nil
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
