package db

import (
	"database/sql"
	"time"

	"er-capacity-scraper/models"
)

// Run represents one execution of the update job
type Run struct {
	ID             int
	Status         string // "in_progress", "done", "failed"
	HospitalsCount int
	Committed      bool
	Error          sql.NullString
	StartedAt      time.Time
	FinishedAt     sql.NullTime
}

// Snapshot represents the stats captured for one hospital during a run
type Snapshot struct {
	ID                   int
	RunID                int
	Hospital             string
	PatientsInDepartment sql.NullInt64
	WaitingForBed        sql.NullInt64
	CreatedAt            time.Time
}

// CreateRun records the start of an update run and returns its ID
func (db *DB) CreateRun() (int, error) {
	var id int
	err := db.conn.QueryRow(`
		INSERT INTO runs (status) VALUES ('in_progress') RETURNING id
	`).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FinishRun marks a run done with its result counts
func (db *DB) FinishRun(runID, hospitalsCount int, committed bool) error {
	_, err := db.conn.Exec(`
		UPDATE runs
		SET status = 'done', hospitals_count = $1, committed = $2, finished_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, hospitalsCount, committed, runID)
	return err
}

// FailRun marks a run failed with its error message
func (db *DB) FailRun(runID int, runErr error) error {
	_, err := db.conn.Exec(`
		UPDATE runs
		SET status = 'failed', error = $1, finished_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, runErr.Error(), runID)
	return err
}

// SaveSnapshot stores one hospital's stats for a run
func (db *DB) SaveSnapshot(runID int, h models.HospitalStats) error {
	var patients, waiting sql.NullInt64
	if v, ok := h.Stat(models.StatPatientsInDepartment); ok {
		patients = sql.NullInt64{Int64: int64(v), Valid: true}
	}
	if v, ok := h.Stat(models.StatWaitingForBed); ok {
		waiting = sql.NullInt64{Int64: int64(v), Valid: true}
	}

	_, err := db.conn.Exec(`
		INSERT INTO snapshots (run_id, hospital, patients_in_department, waiting_for_bed)
		VALUES ($1, $2, $3, $4)
	`, runID, h.Name, patients, waiting)
	return err
}

// RecentSnapshots returns the most recent snapshot rows, newest first
func (db *DB) RecentSnapshots(limit int) ([]Snapshot, error) {
	rows, err := db.conn.Query(`
		SELECT id, run_id, hospital, patients_in_department, waiting_for_bed, created_at
		FROM snapshots
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.RunID, &s.Hospital, &s.PatientsInDepartment, &s.WaitingForBed, &s.CreatedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}
