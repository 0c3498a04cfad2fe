// Package repository handles relational persistence of generated reports.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

// ReportRepository handles report record persistence
type ReportRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool, logger *logrus.Logger) *ReportRepository {
	return &ReportRepository{db: db, log: logger}
}

// Create inserts a new report record
func (r *ReportRepository) Create(ctx context.Context, record *domain.ReportRecord) error {
	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshaling diagnostic result: %w", err)
	}

	sectionsJSON, err := json.Marshal(record.Sections)
	if err != nil {
		return fmt.Errorf("marshaling report sections: %w", err)
	}

	query := `
		INSERT INTO reports (
			id, patient_name, verdict, phenotype, criteria_met, result, sections, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.PatientName,
		record.Verdict.String(),
		record.Phenotype.String(),
		record.CriteriaMet,
		resultJSON,
		sectionsJSON,
		record.CreatedAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"report_id": record.ID,
			"patient":   record.PatientName,
			"error":     err,
		}).Error("Failed to create report record")
		return fmt.Errorf("creating report record: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"report_id": record.ID,
		"verdict":   record.Verdict.String(),
		"phenotype": record.Phenotype.String(),
	}).Info("Report record created")

	return nil
}

// GetByID retrieves a report record by its ID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*domain.ReportRecord, error) {
	query := `
		SELECT id, patient_name, verdict, phenotype, criteria_met, result, sections, created_at
		FROM reports
		WHERE id = $1`

	var record domain.ReportRecord
	var verdict, phenotype string
	var resultJSON, sectionsJSON []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.PatientName,
		&verdict,
		&phenotype,
		&record.CriteriaMet,
		&resultJSON,
		&sectionsJSON,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting report by ID: %w", err)
	}

	record.Verdict = domain.Verdict(verdict)
	record.Phenotype = domain.Phenotype(phenotype)

	if err := json.Unmarshal(resultJSON, &record.Result); err != nil {
		return nil, fmt.Errorf("unmarshaling diagnostic result: %w", err)
	}
	if err := json.Unmarshal(sectionsJSON, &record.Sections); err != nil {
		return nil, fmt.Errorf("unmarshaling report sections: %w", err)
	}

	return &record, nil
}

// ListByPatient retrieves report records for a patient, newest first.
func (r *ReportRepository) ListByPatient(ctx context.Context, patientName string, limit, offset int) ([]*domain.ReportRecord, error) {
	query := `
		SELECT id, patient_name, verdict, phenotype, criteria_met, created_at
		FROM reports
		WHERE patient_name = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, patientName, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing reports by patient: %w", err)
	}
	defer rows.Close()

	var records []*domain.ReportRecord
	for rows.Next() {
		var record domain.ReportRecord
		var verdict, phenotype string
		if err := rows.Scan(
			&record.ID,
			&record.PatientName,
			&verdict,
			&phenotype,
			&record.CriteriaMet,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		record.Verdict = domain.Verdict(verdict)
		record.Phenotype = domain.Phenotype(phenotype)
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}

	return records, nil
}
