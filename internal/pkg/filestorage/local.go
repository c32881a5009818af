package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage rooted at basePath, creating it
// if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// Save implements FileStorage. The stored path is relative to the base path.
func (ls *LocalStorage) Save(subPath, filename string, content io.Reader) (string, error) {
	dir := filepath.Clean("/" + subPath)
	fullDirPath := filepath.Join(ls.basePath, dir)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// Unique name so two uploads of "attendance.xlsx" never collide
	uniqueFilename := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, content); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel, err := filepath.Rel(ls.basePath, dstPath)
	if err != nil {
		return "", err
	}
	stored := filepath.ToSlash(rel)
	logger.Info().Str("filename", filename).Str("stored_as", stored).Msg("File saved successfully")
	return stored, nil
}

// Open implements FileStorage
func (ls *LocalStorage) Open(storedPath string) (io.ReadCloser, error) {
	physical, err := ls.physicalPath(storedPath)
	if err != nil {
		return nil, err
	}
	return os.Open(physical)
}

// DeleteFile implements FileStorage
func (ls *LocalStorage) DeleteFile(storedPath string) error {
	if storedPath == "" {
		return nil
	}
	physical, err := ls.physicalPath(storedPath)
	if err != nil {
		return err
	}

	if err := os.Remove(physical); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physical).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physical).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physical).Msg("File deleted successfully")
	return nil
}

// physicalPath resolves storedPath inside the base path, refusing escapes
func (ls *LocalStorage) physicalPath(storedPath string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(storedPath))
	if cleaned == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file path: %s", storedPath)
	}
	return filepath.Join(ls.basePath, cleaned), nil
}
