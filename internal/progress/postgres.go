package progress

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

// PostgresStore implements Store on a pgx connection pool. The schema is
// created by migrations; see migrations/.
type PostgresStore struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPostgresStore creates a new PostgreSQL progress store.
func NewPostgresStore(db *pgxpool.Pool, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, log: logger}
}

// Append upserts the (name, date) row. The unique constraint on
// (patient_name, entry_date) serializes concurrent writers on the same key.
func (s *PostgresStore) Append(ctx context.Context, record *domain.ProgressRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO progress_entries (
			patient_name, entry_date, weight, bmi, cycle_length, homa_ir, tsh
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (patient_name, entry_date) DO UPDATE SET
			weight = EXCLUDED.weight,
			bmi = EXCLUDED.bmi,
			cycle_length = EXCLUDED.cycle_length,
			homa_ir = EXCLUDED.homa_ir,
			tsh = EXCLUDED.tsh,
			updated_at = NOW()`

	_, err := s.db.Exec(ctx, query,
		record.Name,
		record.Date,
		record.Weight,
		record.BMI,
		record.CycleLength,
		record.HOMAIR,
		record.TSH,
	)

	if err != nil {
		s.log.WithFields(logrus.Fields{
			"patient": record.Name,
			"date":    record.Date.Format("2006-01-02"),
			"error":   err,
		}).Error("Failed to append progress entry")
		return fmt.Errorf("appending progress entry: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"patient": record.Name,
		"date":    record.Date.Format("2006-01-02"),
	}).Info("Progress entry saved")

	return nil
}

// History returns all rows for a patient, oldest first.
func (s *PostgresStore) History(ctx context.Context, patientName string) ([]*domain.ProgressRecord, error) {
	query := `
		SELECT patient_name, entry_date, weight, bmi, cycle_length, homa_ir, tsh
		FROM progress_entries
		WHERE patient_name = $1
		ORDER BY entry_date ASC`

	rows, err := s.db.Query(ctx, query, patientName)
	if err != nil {
		return nil, fmt.Errorf("querying progress history: %w", err)
	}
	defer rows.Close()

	var records []*domain.ProgressRecord
	for rows.Next() {
		var r domain.ProgressRecord
		if err := rows.Scan(&r.Name, &r.Date, &r.Weight, &r.BMI, &r.CycleLength, &r.HOMAIR, &r.TSH); err != nil {
			return nil, fmt.Errorf("scanning progress row: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating progress rows: %w", err)
	}

	return records, nil
}

// Patients lists the distinct patient names present in the tracker.
func (s *PostgresStore) Patients(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT patient_name FROM progress_entries ORDER BY patient_name`)
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

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error {
	return nil
}
