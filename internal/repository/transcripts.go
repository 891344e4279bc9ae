package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// Write upserts the transcript for a patient.
func (s *SQLiteStore) Write(ctx context.Context, patientID, text string) (string, error) {
	if err := domain.ValidatePatientID(patientID); err != nil {
		return "", err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcripts (patient_id, content, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(patient_id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		patientID, text, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return "sqlite:transcripts/" + patientID, nil
}

// Read returns the stored transcript for a patient.
func (s *SQLiteStore) Read(ctx context.Context, patientID string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM transcripts WHERE patient_id = ?`, patientID).Scan(&content)
	if err == sql.ErrNoRows {
		return "", domain.ErrTranscriptNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return content, nil
}

// Exists reports whether a transcript is stored for the patient.
func (s *SQLiteStore) Exists(ctx context.Context, patientID string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM transcripts WHERE patient_id = ?`, patientID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check transcript: %w", err)
	}
	return n > 0, nil
}

// Delete removes the stored transcript for the patient.
func (s *SQLiteStore) Delete(ctx context.Context, patientID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE patient_id = ?`, patientID)
	if err != nil {
		return false, fmt.Errorf("failed to delete transcript: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete transcript: %w", err)
	}
	return n > 0, nil
}
