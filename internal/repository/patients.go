package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

const patientColumns = `id, first_name, last_name, age, sex, mrn, created_at, updated_at`

// CreatePatient inserts a patient. A colliding MRN returns domain.ErrDuplicateMRN.
func (s *SQLiteStore) CreatePatient(ctx context.Context, p *domain.Patient) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patients (id, first_name, last_name, age, sex, mrn, mrn_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.FirstName, p.LastName, nullInt(p.Age), nullString(p.Sex), nullString(p.MRN), mrnKey(p.MRN), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return patientWriteError("create", err)
	}
	return nil
}

// GetPatient retrieves a patient by ID.
func (s *SQLiteStore) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)
	return scanPatient(row)
}

// GetPatientByMRN retrieves a patient by normalized MRN.
func (s *SQLiteStore) GetPatientByMRN(ctx context.Context, mrn string) (*domain.Patient, error) {
	key := NormalizeMRN(mrn)
	if key == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+patientColumns+` FROM patients WHERE mrn_key = ?`, key)
	return scanPatient(row)
}

// ListPatients returns all patients in creation order.
func (s *SQLiteStore) ListPatients(ctx context.Context) ([]*domain.Patient, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	patients := []*domain.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// UpdatePatient overwrites every mutable column of an existing patient.
func (s *SQLiteStore) UpdatePatient(ctx context.Context, p *domain.Patient) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE patients SET first_name = ?, last_name = ?, age = ?, sex = ?, mrn = ?, mrn_key = ?, updated_at = ?
		 WHERE id = ?`,
		p.FirstName, p.LastName, nullInt(p.Age), nullString(p.Sex), nullString(p.MRN), mrnKey(p.MRN), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return patientWriteError("update", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.ErrPatientNotFound
	}
	return nil
}

// DeletePatient removes a patient and reports whether it existed.
func (s *SQLiteStore) DeletePatient(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete patient: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete patient: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	var p domain.Patient
	var age sql.NullInt64
	var sex, mrn sql.NullString

	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &age, &sex, &mrn, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan patient: %w", err)
	}

	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if sex.Valid {
		p.Sex = &sex.String
	}
	if mrn.Valid {
		p.MRN = &mrn.String
	}
	return &p, nil
}

func patientWriteError(op string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique && strings.Contains(se.Error(), "mrn_key") {
		return domain.ErrDuplicateMRN
	}
	return fmt.Errorf("failed to %s patient: %w", op, err)
}

func mrnKey(mrn *string) interface{} {
	if mrn == nil {
		return nil
	}
	if key := NormalizeMRN(*mrn); key != "" {
		return key
	}
	return nil
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}
