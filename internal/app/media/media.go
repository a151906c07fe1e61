// Package media stores uploaded post images on the local filesystem.
package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/DariaKalinichenko/Yatube/internal/app/forms"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

// PostsDir is the sub-directory of the media root holding post images.
const PostsDir = "posts"

// Storage writes uploads below Root and serves them back.
type Storage struct {
	Root string
	log  *logger.Logger
}

// New returns a storage rooted at root. The directory is created lazily.
func New(root string, log *logger.Logger) *Storage {
	if log == nil {
		log = logger.NewDefault("media")
	}
	return &Storage{Root: root, log: log}
}

// Save writes the upload under posts/<uuid><ext> and returns the path
// relative to Root, using forward slashes.
func (s *Storage) Save(ctx context.Context, upload *forms.Upload) (string, error) {
	if upload == nil || len(upload.Data) == 0 {
		return "", fmt.Errorf("media: empty upload")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := upload.Extension
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(upload.Filename))
	}
	rel := path.Join(PostsDir, uuid.NewString()+ext)

	dir := filepath.Join(s.Root, PostsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media: create dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Root, filepath.FromSlash(rel)), upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("media: write %s: %w", rel, err)
	}

	s.log.WithField("path", rel).WithField("bytes", len(upload.Data)).Info("image stored")
	return rel, nil
}

// Remove deletes a previously saved file. Missing files are ignored.
func (s *Storage) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(path.Clean("/"+rel))))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("media: remove %s: %w", rel, err)
	}
	return nil
}

// URL returns the public URL of a stored file.
func URL(rel string) string {
	if rel == "" {
		return ""
	}
	return "/media/" + strings.TrimPrefix(rel, "/")
}

// Handler serves files below Root. Mount it with the /media/ prefix stripped.
func (s *Storage) Handler() http.Handler {
	return http.FileServer(http.Dir(s.Root))
}
