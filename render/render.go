package render

import (
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"er-capacity-scraper/models"
)

// timestampFormat matches the page's original "June 02, 2025 at 03:04:05 PM CST" stamp
const timestampFormat = "January 02, 2006 at 03:04:05 PM MST"

// tableTemplate renders the capacity table shown on the page
var tableTemplate = template.Must(template.New("table").Parse(`<table border="0" class="dataframe table table-striped table-hover">
  <thead>
    <tr style="text-align: left;">
      <th>Hospital</th>{{range .Keywords}}
      <th>{{.}}</th>{{end}}
    </tr>
  </thead>
  <tbody>{{range .Rows}}
    <tr>
      <td>{{.Name}}</td>{{range .Values}}
      <td>{{.}}</td>{{end}}
    </tr>{{end}}
  </tbody>
</table>`))

// Renderer generates the static page from a template file
type Renderer struct {
	templatePath string
	keywords     []string
	location     *time.Location
}

// NewRenderer creates a new Renderer instance. The timezone is used for the
// "last updated" stamp; loading failures fall back to UTC.
func NewRenderer(templatePath, timezone string, keywords []string) *Renderer {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Renderer{
		templatePath: templatePath,
		keywords:     keywords,
		location:     loc,
	}
}

// pageData is what the page template is executed with
type pageData struct {
	DataTable  template.HTML
	UpdateTime string
}

type tableRow struct {
	Name   string
	Values []string
}

// Render produces the final page for a report and writes it to outputPath
func (r *Renderer) Render(report models.Report, outputPath string) error {
	return r.render(r.DataTable(report.Hospitals), report.FetchedAt, outputPath)
}

// RenderFetchFailure produces the page shown when the source PDF could not be
// downloaded
func (r *Renderer) RenderFetchFailure(now time.Time, outputPath string) error {
	notice := `<p class='text-danger'><b>Error:</b> Failed to download the data source PDF.</p>`
	return r.render(template.HTML(notice), now, outputPath)
}

func (r *Renderer) render(table template.HTML, now time.Time, outputPath string) error {
	raw, err := os.ReadFile(r.templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	tmpl, err := template.New("page").Parse(string(raw))
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	data := pageData{
		DataTable:  table,
		UpdateTime: now.In(r.location).Format(timestampFormat),
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// DataTable builds the HTML table for the extracted statistics. Missing stats
// render as N/A; an empty result renders a notice instead of a table.
func (r *Renderer) DataTable(hospitals []models.HospitalStats) template.HTML {
	if len(hospitals) == 0 {
		return template.HTML(`<p class='text-danger'><b>No data available.</b> The scraper ran successfully but could not extract any statistics from the source PDF. The format may have temporarily changed.</p>`)
	}

	var rows []tableRow
	for _, h := range hospitals {
		row := tableRow{Name: h.Name}
		for _, keyword := range r.keywords {
			if v, ok := h.Stat(keyword); ok {
				row.Values = append(row.Values, fmt.Sprintf("%d", v))
			} else {
				row.Values = append(row.Values, "N/A")
			}
		}
		rows = append(rows, row)
	}

	var buf strings.Builder
	if err := tableTemplate.Execute(&buf, struct {
		Keywords []string
		Rows     []tableRow
	}{r.keywords, rows}); err != nil {
		// The table template is static; execution can only fail on a bad writer
		return template.HTML(fmt.Sprintf("<p class='text-danger'>render error: %v</p>", err))
	}

	return template.HTML(buf.String())
}
