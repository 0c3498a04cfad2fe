// Package progress persists the progress tracker: one row per patient per
// day, replace-on-write. Two backends are provided: PostgreSQL for server
// deployments and SQLite for standalone operation.
package progress

import (
	"context"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

// Store is the progress tracker interface.
//
// Append writes one row keyed by (Name, Date); a later write for the same key
// replaces the earlier row. Records with an empty name are rejected with
// domain.ErrEmptyPatientName before touching storage.
type Store interface {
	Append(ctx context.Context, record *domain.ProgressRecord) error
	History(ctx context.Context, patientName string) ([]*domain.ProgressRecord, error)
	Patients(ctx context.Context) ([]string, error)
	Close() error
}
