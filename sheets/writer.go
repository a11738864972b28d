package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"er-capacity-scraper/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer appends capacity snapshots to a Google Sheet
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewWriter creates a new Google Sheets writer. Credentials come from the
// given file path or from the GOOGLE_SHEETS_CREDENTIALS environment variable.
func NewWriter(spreadsheetID string, credentialsPath string) (*Writer, error) {
	ctx := context.Background()

	var credsJSON []byte
	var err error

	if credentialsPath != "" {
		credsJSON, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		log.Printf("Reading credentials from GOOGLE_SHEETS_CREDENTIALS environment variable (%d bytes)\n", len(credsEnv))
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// AppendReport appends one row per hospital to the history sheet
func (w *Writer) AppendReport(report models.Report) error {
	if report.Empty() {
		log.Println("No snapshot rows to append")
		return nil
	}

	timestamp := report.FetchedAt.UTC().Format(time.RFC3339)

	var values [][]interface{}
	for _, h := range report.Hospitals {
		row := []interface{}{timestamp, h.Name}
		for _, keyword := range []string{models.StatPatientsInDepartment, models.StatWaitingForBed} {
			if v, ok := h.Stat(keyword); ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		values = append(values, row)
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err := w.service.Spreadsheets.Values.
		Append(w.spreadsheetID, "History!A1", valueRange).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Do()
	if err != nil {
		return fmt.Errorf("failed to append snapshot rows: %w", err)
	}

	log.Printf("Appended %d snapshot rows to spreadsheet %s\n", len(values), w.spreadsheetID)
	return nil
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL.
// A bare ID is returned unchanged.
func ExtractSpreadsheetID(url string) string {
	if m := spreadsheetIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if !strings.Contains(url, "/") && url != "" {
		return url
	}
	return ""
}
