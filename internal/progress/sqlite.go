package progress

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

// dateLayout is the stored form of the (name, date) key's date component.
const dateLayout = "2006-01-02"

// SQLiteStore implements Store on a local SQLite database for standalone
// operation. The file and schema are created on first use.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite progress store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS progress_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patient_name TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		weight REAL NOT NULL DEFAULT 0,
		bmi REAL NOT NULL DEFAULT 0,
		cycle_length INTEGER NOT NULL DEFAULT 0,
		homa_ir REAL NOT NULL DEFAULT 0,
		tsh REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(patient_name, entry_date)
	);

	CREATE INDEX IF NOT EXISTS idx_progress_patient ON progress_entries(patient_name);
	CREATE INDEX IF NOT EXISTS idx_progress_date ON progress_entries(entry_date);
	`

	_, err := db.Exec(schema)
	return err
}

// Append upserts the (name, date) row.
func (s *SQLiteStore) Append(ctx context.Context, record *domain.ProgressRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO progress_entries (
			patient_name, entry_date, weight, bmi, cycle_length, homa_ir, tsh, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(patient_name, entry_date) DO UPDATE SET
			weight = excluded.weight,
			bmi = excluded.bmi,
			cycle_length = excluded.cycle_length,
			homa_ir = excluded.homa_ir,
			tsh = excluded.tsh,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		record.Name,
		record.Date.Format(dateLayout),
		record.Weight,
		record.BMI,
		record.CycleLength,
		record.HOMAIR,
		record.TSH,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("appending progress entry: %w", err)
	}
	return nil
}

// History returns all rows for a patient, oldest first.
func (s *SQLiteStore) History(ctx context.Context, patientName string) ([]*domain.ProgressRecord, error) {
	query := `
		SELECT patient_name, entry_date, weight, bmi, cycle_length, homa_ir, tsh
		FROM progress_entries
		WHERE patient_name = ?
		ORDER BY entry_date ASC`

	rows, err := s.db.QueryContext(ctx, query, patientName)
	if err != nil {
		return nil, fmt.Errorf("querying progress history: %w", err)
	}
	defer rows.Close()

	var records []*domain.ProgressRecord
	for rows.Next() {
		var r domain.ProgressRecord
		var date string
		if err := rows.Scan(&r.Name, &date, &r.Weight, &r.BMI, &r.CycleLength, &r.HOMAIR, &r.TSH); err != nil {
			return nil, fmt.Errorf("scanning progress row: %w", err)
		}
		if r.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parsing entry date %q: %w", date, err)
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Patients lists the distinct patient names present in the tracker.
func (s *SQLiteStore) Patients(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT patient_name FROM progress_entries ORDER BY patient_name`)
	if err != nil {
		return nil, fmt.Errorf("querying patients: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning patient name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
