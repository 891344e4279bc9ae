// Package repository provides persistence for transcripts and patients.
package repository

import (
	"context"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

// TranscriptStore persists finished interview transcripts under a per-patient key.
type TranscriptStore interface {
	// Write stores text for the patient, replacing any previous transcript,
	// and returns a reference describing where it was stored.
	Write(ctx context.Context, patientID, text string) (string, error)
	// Read returns domain.ErrTranscriptNotFound when nothing is stored.
	Read(ctx context.Context, patientID string) (string, error)
	Exists(ctx context.Context, patientID string) (bool, error)
	// Delete reports whether a transcript was removed.
	Delete(ctx context.Context, patientID string) (bool, error)
}

// PatientStore is the patient registry.
// Get methods return (nil, nil) when the patient does not exist.
type PatientStore interface {
	CreatePatient(ctx context.Context, p *domain.Patient) error
	GetPatient(ctx context.Context, id string) (*domain.Patient, error)
	GetPatientByMRN(ctx context.Context, mrn string) (*domain.Patient, error)
	ListPatients(ctx context.Context) ([]*domain.Patient, error)
	UpdatePatient(ctx context.Context, p *domain.Patient) error
	DeletePatient(ctx context.Context, id string) (bool, error)
}

// FileStorage serves free-form text files from the OneDrive-synced base
// (useOneDrive) or from local storage.
type FileStorage interface {
	WriteFile(ctx context.Context, relPath, content string, useOneDrive bool) (string, error)
	// ReadFile returns domain.ErrFileNotFound when the file does not exist.
	ReadFile(ctx context.Context, relPath string, useOneDrive bool) (string, error)
}

var (
	_ FileStorage     = (*FileRepository)(nil)
	_ TranscriptStore = (*SQLiteStore)(nil)
	_ TranscriptStore = (*FileTranscriptStore)(nil)
	_ PatientStore    = (*SQLiteStore)(nil)
)
