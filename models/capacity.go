package models

import "time"

// Stat keys extracted from the capacity report
const (
	StatPatientsInDepartment = "Patients in Department"
	StatWaitingForBed        = "Waiting for Inpatient Bed"
)

// HospitalStats holds the statistics extracted for a single hospital
type HospitalStats struct {
	Name  string
	Stats map[string]int // keyed by stat keyword, e.g. "Patients in Department"
}

// Stat returns the value for a stat keyword and whether it was extracted
func (h HospitalStats) Stat(keyword string) (int, bool) {
	v, ok := h.Stats[keyword]
	return v, ok
}

// Report is the result of one scrape of the capacity PDF
type Report struct {
	FetchedAt   time.Time
	Hospitals   []HospitalStats
	FetchFailed bool
}

// Empty reports whether no statistics were extracted at all
func (r Report) Empty() bool {
	return len(r.Hospitals) == 0
}
