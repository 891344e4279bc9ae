package service

import "context"

// WriteFile writes a free-form text file under the OneDrive-synced base or local storage.
func (s *Service) WriteFile(ctx context.Context, relPath, content string, useOneDrive bool) (string, error) {
	rel, err := s.files.WriteFile(ctx, relPath, content, useOneDrive)
	if err != nil {
		return "", err
	}
	s.log.WithField("path", rel).WithField("onedrive", useOneDrive).Info("file written")
	return rel, nil
}

// ReadFile reads a free-form text file.
func (s *Service) ReadFile(ctx context.Context, relPath string, useOneDrive bool) (string, error) {
	return s.files.ReadFile(ctx, relPath, useOneDrive)
}
