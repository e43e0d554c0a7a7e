package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/watheeq/watheeq-backend/pkg/config"
	"github.com/watheeq/watheeq-backend/pkg/errors"
)

// FileStore keeps uploaded reports and videos on the local filesystem.
// Files are namespaced per request as request_<id>_<filename> so a video
// can be located later knowing only the request ID.
type FileStore struct {
	reportsDir string
	videosDir  string
}

// NewFileStore creates a file store and ensures both directories exist
func NewFileStore(cfg config.StorageConfig) (*FileStore, error) {
	for _, dir := range []string{cfg.ReportsDir, cfg.VideosDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.InternalWrap(err, "failed to create storage directory")
		}
	}
	return &FileStore{
		reportsDir: cfg.ReportsDir,
		videosDir:  cfg.VideosDir,
	}, nil
}

// SaveReport stores an uploaded report PDF and returns its path
func (s *FileStore) SaveReport(requestID int64, filename string, content []byte) (string, error) {
	return s.save(s.reportsDir, requestID, filename, content)
}

// SaveVideo stores an uploaded footage file and returns its path
func (s *FileStore) SaveVideo(requestID int64, filename string, content []byte) (string, error) {
	return s.save(s.videosDir, requestID, filename, content)
}

// FindVideo locates the stored video for a request. The second return
// value is false when no video has been uploaded yet.
func (s *FileStore) FindVideo(requestID int64) (string, bool) {
	prefix := fmt.Sprintf("request_%d_", requestID)
	entries, err := os.ReadDir(s.videosDir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			return filepath.Join(s.videosDir, entry.Name()), true
		}
	}
	return "", false
}

func (s *FileStore) save(dir string, requestID int64, filename string, content []byte) (string, error) {
	// Base strips any path components a client smuggles into the filename.
	safeName := fmt.Sprintf("request_%d_%s", requestID, filepath.Base(filename))
	dest := filepath.Join(dir, safeName)
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return "", errors.InternalWrap(err, "failed to store file")
	}
	return dest, nil
}
