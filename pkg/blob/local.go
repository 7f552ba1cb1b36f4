package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local keeps blobs as files below a root directory
type Local struct {
	root     string
	mediaURL string
}

// NewLocal creates the root directory if needed
func NewLocal(root, mediaURL string) (*Local, error) {
	if root == "" {
		return nil, fmt.Errorf("local blob root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Local{root: root, mediaURL: mediaURL}, nil
}

// Root returns the directory served under the media URL
func (l *Local) Root() string { return l.root }

func (l *Local) Driver() Driver { return DriverLocal }

func (l *Local) URL(key string) string { return joinURL(l.mediaURL, key) }

func (l *Local) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	key, err := CleanKey(key)
	if err != nil {
		return Info{}, err
	}
	dst := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Info{}, err
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return Info{}, ErrExists
		}
		return Info{}, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return Info{}, err
	}
	return Info{Key: key, Size: n, ContentType: contentType, URL: l.URL(key)}, nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
