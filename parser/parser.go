package parser

import (
	"bytes"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"er-capacity-scraper/models"

	"github.com/ledongthuc/pdf"
)

var numberPattern = regexp.MustCompile(`(\d+)`)

// Parser extracts per-hospital statistics from the capacity report PDF
type Parser struct {
	hospitals []string
	keywords  []string
}

// NewParser creates a new Parser instance
func NewParser(hospitals, keywords []string) *Parser {
	return &Parser{
		hospitals: hospitals,
		keywords:  keywords,
	}
}

// Parse extracts statistics from the raw PDF bytes
func (p *Parser) Parse(data []byte) ([]models.HospitalStats, error) {
	lines, err := extractLines(data)
	if err != nil {
		return nil, err
	}
	return p.ParseLines(lines), nil
}

// ParseLines walks the text lines of the report. A line containing a hospital
// name switches the current section; within a section, the first integer on a
// line containing a stat keyword is recorded. The first value found for a
// hospital/keyword pair wins.
func (p *Parser) ParseLines(lines []string) []models.HospitalStats {
	statsByHospital := make(map[string]map[string]int)
	currentHospital := ""

	for _, line := range lines {
		for _, hospital := range p.hospitals {
			if containsFold(line, hospital) {
				currentHospital = hospital
				break
			}
		}

		if currentHospital == "" {
			continue
		}

		for _, keyword := range p.keywords {
			if !containsFold(line, keyword) {
				continue
			}

			match := numberPattern.FindString(line)
			if match == "" {
				continue
			}
			value, err := strconv.Atoi(match)
			if err != nil {
				continue
			}

			if statsByHospital[currentHospital] == nil {
				statsByHospital[currentHospital] = make(map[string]int)
			}
			// Keep the first value seen for this hospital/keyword
			if _, seen := statsByHospital[currentHospital][keyword]; !seen {
				statsByHospital[currentHospital][keyword] = value
				log.Printf("Parsed stat %q for %s: %d\n", keyword, currentHospital, value)
			}
		}
	}

	// Preserve the configured hospital order; skip hospitals without stats
	var result []models.HospitalStats
	for _, hospital := range p.hospitals {
		stats, ok := statsByHospital[hospital]
		if !ok || len(stats) == 0 {
			continue
		}
		result = append(result, models.HospitalStats{Name: hospital, Stats: stats})
	}

	return result
}

// containsFold reports whether substr occurs in s, ignoring case
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// extractLines pulls the text of the first PDF page and reassembles it into
// reading-order lines
func extractLines(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	if reader.NumPage() < 1 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		return nil, fmt.Errorf("failed to read first PDF page")
	}

	return assembleLines(page.Content().Text), nil
}

// assembleLines groups positioned text fragments into lines. Fragments whose
// vertical positions differ by at most yTolerance belong to the same line;
// lines are ordered top to bottom, fragments left to right.
func assembleLines(texts []pdf.Text) []string {
	const yTolerance = 2.0

	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	// PDF origin is bottom-left, so larger Y means higher on the page
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []string
	var row []pdf.Text
	rowY := sorted[0].Y

	flush := func() {
		if len(row) == 0 {
			return
		}
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		var buf bytes.Buffer
		var prevEnd float64
		for i, t := range row {
			if i > 0 && t.X-prevEnd > 1.0 {
				buf.WriteByte(' ')
			}
			buf.WriteString(t.S)
			prevEnd = t.X + t.W
		}
		lines = append(lines, buf.String())
		row = row[:0]
	}

	for _, t := range sorted {
		if rowY-t.Y > yTolerance {
			flush()
			rowY = t.Y
		}
		row = append(row, t)
	}
	flush()

	return lines
}
