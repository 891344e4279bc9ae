package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xiaot623/gogo/intake/internal/domain"
)

const interviewDir = "Interview"

// FileStore reads and writes text files below a single base directory.
// Relative paths that would resolve outside the base are rejected.
type FileStore struct {
	base string
}

// NewFileStore creates a file store rooted at base.
func NewFileStore(base string) *FileStore {
	return &FileStore{base: base}
}

// Write stores content atomically and returns the cleaned, slash-separated relative path.
func (f *FileStore) Write(ctx context.Context, relPath, content string) (string, error) {
	full, rel, err := f.resolve(relPath)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".write-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return rel, nil
}

// Read returns the file content or domain.ErrFileNotFound.
func (f *FileStore) Read(ctx context.Context, relPath string) (string, error) {
	full, _, err := f.resolve(relPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return "", domain.ErrFileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// Exists reports whether a regular file is present at relPath.
func (f *FileStore) Exists(ctx context.Context, relPath string) (bool, error) {
	full, _, err := f.resolve(relPath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Remove deletes the file and reports whether it existed.
func (f *FileStore) Remove(ctx context.Context, relPath string) (bool, error) {
	full, _, err := f.resolve(relPath)
	if err != nil {
		return false, err
	}
	err = os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return true, nil
}

// resolve joins relPath onto the base, rejecting absolute paths, NUL bytes
// and anything that cleans to the base itself or escapes it.
func (f *FileStore) resolve(relPath string) (string, string, error) {
	if strings.TrimSpace(relPath) == "" {
		return "", "", domain.InvalidInputf("relative_path is required")
	}
	if strings.ContainsRune(relPath, 0) || filepath.IsAbs(relPath) || strings.HasPrefix(relPath, "/") || strings.HasPrefix(relPath, `\`) {
		return "", "", domain.InvalidInputf("invalid path %q: attempted path traversal", relPath)
	}

	clean := filepath.Clean(filepath.FromSlash(relPath))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", "", domain.InvalidInputf("invalid path %q: attempted path traversal", relPath)
	}
	return filepath.Join(f.base, clean), filepath.ToSlash(clean), nil
}

// FileRepository serves free-form text files from the OneDrive-synced base or local storage.
type FileRepository struct {
	onedrive *FileStore
	storage  *FileStore
}

// NewFileRepository creates a repository over the two base directories.
func NewFileRepository(onedriveBase, storageBase string) *FileRepository {
	return &FileRepository{
		onedrive: NewFileStore(onedriveBase),
		storage:  NewFileStore(storageBase),
	}
}

// WriteFile writes content under the selected base and returns the relative path.
func (r *FileRepository) WriteFile(ctx context.Context, relPath, content string, useOneDrive bool) (string, error) {
	return r.base(useOneDrive).Write(ctx, relPath, content)
}

// ReadFile reads a file under the selected base.
func (r *FileRepository) ReadFile(ctx context.Context, relPath string, useOneDrive bool) (string, error) {
	return r.base(useOneDrive).Read(ctx, relPath)
}

func (r *FileRepository) base(useOneDrive bool) *FileStore {
	if useOneDrive {
		return r.onedrive
	}
	return r.storage
}

// FileTranscriptStore keeps transcripts as {base}/Interview/{patient_id}.txt.
type FileTranscriptStore struct {
	files *FileStore
}

// NewFileTranscriptStore creates a file-backed transcript store rooted at base.
func NewFileTranscriptStore(base string) *FileTranscriptStore {
	return &FileTranscriptStore{files: NewFileStore(base)}
}

// Write stores text atomically and returns the path relative to the base.
func (t *FileTranscriptStore) Write(ctx context.Context, patientID, text string) (string, error) {
	rel, err := transcriptPath(patientID)
	if err != nil {
		return "", err
	}
	return t.files.Write(ctx, rel, text)
}

// Read returns the stored transcript.
func (t *FileTranscriptStore) Read(ctx context.Context, patientID string) (string, error) {
	rel, err := transcriptPath(patientID)
	if err != nil {
		return "", err
	}
	text, err := t.files.Read(ctx, rel)
	if errors.Is(err, domain.ErrFileNotFound) {
		return "", domain.ErrTranscriptNotFound
	}
	return text, err
}

// Exists reports whether a transcript file is present.
func (t *FileTranscriptStore) Exists(ctx context.Context, patientID string) (bool, error) {
	rel, err := transcriptPath(patientID)
	if err != nil {
		return false, err
	}
	return t.files.Exists(ctx, rel)
}

// Delete removes the transcript file if present.
func (t *FileTranscriptStore) Delete(ctx context.Context, patientID string) (bool, error) {
	rel, err := transcriptPath(patientID)
	if err != nil {
		return false, err
	}
	return t.files.Remove(ctx, rel)
}

func transcriptPath(patientID string) (string, error) {
	if err := domain.ValidatePatientID(patientID); err != nil {
		return "", err
	}
	return path.Join(interviewDir, patientID+".txt"), nil
}
