package appointments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/carefront/frontdesk-ai/pkg/logging"
)

// Record is the flattened snapshot of a confirmed appointment. One row is
// written per successful commit and never updated afterwards. Date and Time
// stay free-text: they are whatever wording the patient confirmed.
type Record struct {
	ID         int64
	Name       string
	Department string
	Doctor     string
	Date       string
	Time       string
	Email      string
	Mobile     string
}

// Repository persists appointment records to PostgreSQL.
type Repository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewRepository creates a repository over the given connection pool.
func NewRepository(db *sql.DB, logger *logging.Logger) *Repository {
	if db == nil {
		panic("appointments: db handle required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{db: db, logger: logger}
}

// Migrate creates the appointments table when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS appointments (
	id BIGSERIAL PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	name TEXT NOT NULL DEFAULT '',
	department TEXT NOT NULL DEFAULT '',
	doctor TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL DEFAULT '',
	time TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	mobile TEXT NOT NULL DEFAULT ''
)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("appointments: migrate: %w", err)
	}
	return nil
}

// Insert writes one confirmed appointment. The database assigns the
// identifier and creation timestamp; the assigned ID is stored back into rec.
func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO appointments (name, department, doctor, date, time, email, mobile)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, rec.Name, rec.Department, rec.Doctor, rec.Date, rec.Time, rec.Email, rec.Mobile).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("appointments: insert: %w", err)
	}
	r.logger.Info("appointment saved", "appointment_id", rec.ID, "department", rec.Department)
	return nil
}
