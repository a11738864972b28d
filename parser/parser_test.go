package parser

import (
	"reflect"
	"testing"

	"er-capacity-scraper/models"

	"github.com/ledongthuc/pdf"
)

var testHospitals = []string{
	"Royal University Hospital",
	"Saskatoon City Hospital",
	"Jim Pattison Children's Hospital",
}

var testKeywords = []string{
	"Patients in Department",
	"Waiting for Inpatient Bed",
}

func TestParseLines(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected []models.HospitalStats
	}{
		{
			name: "all hospitals with both stats",
			lines: []string{
				"Saskatoon Hospital Bed Capacity",
				"Royal University Hospital Emergency Department",
				"Patients in Department 42",
				"Waiting for Inpatient Bed 7",
				"Saskatoon City Hospital Emergency Department",
				"Patients in Department 18",
				"Waiting for Inpatient Bed 3",
				"Jim Pattison Children's Hospital Emergency Department",
				"Patients in Department 25",
				"Waiting for Inpatient Bed 0",
			},
			expected: []models.HospitalStats{
				{Name: "Royal University Hospital", Stats: map[string]int{
					"Patients in Department": 42, "Waiting for Inpatient Bed": 7,
				}},
				{Name: "Saskatoon City Hospital", Stats: map[string]int{
					"Patients in Department": 18, "Waiting for Inpatient Bed": 3,
				}},
				{Name: "Jim Pattison Children's Hospital", Stats: map[string]int{
					"Patients in Department": 25, "Waiting for Inpatient Bed": 0,
				}},
			},
		},
		{
			name: "first value wins per hospital and keyword",
			lines: []string{
				"Royal University Hospital",
				"Patients in Department 10",
				"Patients in Department 99",
			},
			expected: []models.HospitalStats{
				{Name: "Royal University Hospital", Stats: map[string]int{
					"Patients in Department": 10,
				}},
			},
		},
		{
			name: "keyword lines before any hospital section are ignored",
			lines: []string{
				"Patients in Department 55",
				"Saskatoon City Hospital",
				"Patients in Department 12",
			},
			expected: []models.HospitalStats{
				{Name: "Saskatoon City Hospital", Stats: map[string]int{
					"Patients in Department": 12,
				}},
			},
		},
		{
			name: "hospitals without stats are omitted",
			lines: []string{
				"Royal University Hospital",
				"Saskatoon City Hospital",
				"Waiting for Inpatient Bed 4",
			},
			expected: []models.HospitalStats{
				{Name: "Saskatoon City Hospital", Stats: map[string]int{
					"Waiting for Inpatient Bed": 4,
				}},
			},
		},
		{
			name: "keyword line without a number is skipped",
			lines: []string{
				"Royal University Hospital",
				"Patients in Department N/A",
				"Patients in Department 31",
			},
			expected: []models.HospitalStats{
				{Name: "Royal University Hospital", Stats: map[string]int{
					"Patients in Department": 31,
				}},
			},
		},
		{
			name:     "no recognizable content",
			lines:    []string{"Some unrelated report", "Totals 123"},
			expected: nil,
		},
		{
			name:     "empty input",
			lines:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(testHospitals, testKeywords)
			got := p.ParseLines(tt.lines)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseLines() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestParseLinesResultOrder(t *testing.T) {
	// Sections appear out of configured order in the PDF; the result should
	// still follow the configured hospital order
	lines := []string{
		"Jim Pattison Children's Hospital",
		"Patients in Department 5",
		"Royal University Hospital",
		"Patients in Department 40",
	}

	p := NewParser(testHospitals, testKeywords)
	got := p.ParseLines(lines)

	if len(got) != 2 {
		t.Fatalf("ParseLines() returned %d hospitals, want 2", len(got))
	}
	if got[0].Name != "Royal University Hospital" {
		t.Errorf("first hospital = %q, want Royal University Hospital", got[0].Name)
	}
	if got[1].Name != "Jim Pattison Children's Hospital" {
		t.Errorf("second hospital = %q, want Jim Pattison Children's Hospital", got[1].Name)
	}
}

func TestAssembleLines(t *testing.T) {
	texts := []pdf.Text{
		{S: "Patients", X: 10, Y: 700, W: 40},
		{S: "in", X: 52, Y: 700, W: 10},
		{S: "Department", X: 64, Y: 700, W: 55},
		{S: "42", X: 200, Y: 699.5, W: 12},
		{S: "Royal", X: 10, Y: 720, W: 28},
		{S: "University", X: 40, Y: 720, W: 48},
		{S: "Hospital", X: 90, Y: 720, W: 40},
	}

	got := assembleLines(texts)
	want := []string{
		"Royal University Hospital",
		"Patients in Department 42",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("assembleLines() = %q, want %q", got, want)
	}
}

func TestAssembleLinesJoinsAdjacentFragments(t *testing.T) {
	// Fragments with no horizontal gap belong to the same word
	texts := []pdf.Text{
		{S: "Hos", X: 10, Y: 100, W: 15},
		{S: "pital", X: 25, Y: 100, W: 20},
	}

	got := assembleLines(texts)
	if len(got) != 1 || got[0] != "Hospital" {
		t.Errorf("assembleLines() = %q, want [\"Hospital\"]", got)
	}
}

func TestAssembleLinesEmpty(t *testing.T) {
	if got := assembleLines(nil); got != nil {
		t.Errorf("assembleLines(nil) = %q, want nil", got)
	}
}

func TestParseInvalidPDF(t *testing.T) {
	p := NewParser(testHospitals, testKeywords)
	if _, err := p.Parse([]byte("not a pdf")); err == nil {
		t.Error("Parse() expected error for invalid PDF, got nil")
	}
}
