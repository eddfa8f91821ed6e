package media

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore persists media artifacts under a directory on the local
// filesystem and maps each file to a stable URL path.
type LocalStore struct {
	dir     string
	baseURL string
	logger  *slog.Logger
}

// NewLocalStore creates a LocalStore rooted at dir. Files saved under it are
// addressed as baseURL/subdir/name; baseURL defaults to "/media".
func NewLocalStore(dir, baseURL string, logger *slog.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("media directory cannot be empty")
	}
	if baseURL == "" {
		baseURL = "/media"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: baseURL,
		logger:  logger.With(slog.String("component", "media_store")),
	}, nil
}

// Save writes data to dir/subdir/name and returns the file's URL path.
func (s *LocalStore) Save(subdir, name string, data []byte) (string, error) {
	filePath, url, err := s.Path(subdir, name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	s.logger.Debug("media file saved",
		slog.String("url", url),
		slog.Int("bytes", len(data)))
	return url, nil
}

// Path ensures dir/subdir exists and returns the filesystem path and URL a
// file of the given name would occupy. Used by producers that write the file
// themselves, such as the video composer.
func (s *LocalStore) Path(subdir, name string) (filePath, url string, err error) {
	if name == "" || name != filepath.Base(name) {
		return "", "", fmt.Errorf("invalid media file name %q", name)
	}
	target := filepath.Join(s.dir, subdir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", "", fmt.Errorf("create media subdirectory: %w", err)
	}
	return filepath.Join(target, name), path.Join(s.baseURL, subdir, name), nil
}

// Resolve maps a URL produced by Save back to its filesystem path.
func (s *LocalStore) Resolve(url string) (string, error) {
	rel, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || rel == "" || strings.Contains(rel, "..") {
		return "", fmt.Errorf("url %q is not under the media store", url)
	}
	return filepath.Join(s.dir, filepath.FromSlash(rel)), nil
}

// Dir returns the store's root directory.
func (s *LocalStore) Dir() string {
	return s.dir
}
