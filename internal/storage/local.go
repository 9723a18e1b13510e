package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images below a media root on the local filesystem.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{root: root, baseURL: baseURL}
}

func (s *LocalStore) Backend() string { return "local" }

func (s *LocalStore) Save(ctx context.Context, r io.Reader) (string, error) {
	img, err := DetectImage(r)
	if err != nil {
		return "", err
	}

	ref := newObjectKey(img.Ext)
	dest := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(f, img.Body); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to close image file: %w", err)
	}
	return ref, nil
}

func (s *LocalStore) URL(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	return s.baseURL + (&url.URL{Path: strings.TrimPrefix(ref, "/")}).EscapedPath(), nil
}

// Delete removes a stored image. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	dest := filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+ref)))
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// Root is the directory served under the media URL.
func (s *LocalStore) Root() string {
	return s.root
}
