// Package files stores captured images in a private directory and reports
// how much space they use.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/afero"
)

// DirName is the images directory name used under the data directory.
const DirName = "forest_guardian"

// ErrOutsideStore is returned for paths that do not belong to the store.
var ErrOutsideStore = errors.New("path is outside the image store")

// ImageStore copies images into a single directory it owns.
type ImageStore struct {
	fs  afero.Fs
	dir string

	mu      sync.Mutex
	entropy io.Reader
}

// NewImageStore returns a store rooted at dir on fs. The directory is
// created lazily.
func NewImageStore(fs afero.Fs, dir string) *ImageStore {
	return &ImageStore{
		fs:      fs,
		dir:     filepath.Clean(dir),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// NewOSImageStore returns a store on the local filesystem.
func NewOSImageStore(dir string) *ImageStore {
	return NewImageStore(afero.NewOsFs(), dir)
}

// Dir returns the images directory.
func (s *ImageStore) Dir() string {
	return s.dir
}

func (s *ImageStore) ensureDir() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create images dir: %w", err)
	}
	return nil
}

func (s *ImageStore) newName(ext string) string {
	s.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy)
	s.mu.Unlock()
	return "img_" + strings.ToLower(id.String()) + ext
}

// Save copies the file at src into the store and returns its permanent
// path. The source file is left in place.
func (s *ImageStore) Save(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.ensureDir(); err != nil {
		return "", err
	}

	in, err := s.fs.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source image: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source image %s is a directory", src)
	}

	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = ".jpg"
	}
	dst := filepath.Join(s.dir, s.newName(ext))

	out, err := s.fs.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		s.fs.Remove(dst)
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := out.Close(); err != nil {
		s.fs.Remove(dst)
		return "", fmt.Errorf("close image: %w", err)
	}
	return dst, nil
}

// Owns reports whether path points into the store's directory.
func (s *ImageStore) Owns(path string) bool {
	if path == "" {
		return false
	}
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != "." && !strings.HasPrefix(rel, "..") && !strings.ContainsRune(rel, filepath.Separator)
}

// Delete removes an image. A missing file is not an error.
func (s *ImageStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Owns(path) {
		return fmt.Errorf("%w: %s", ErrOutsideStore, path)
	}
	err := s.fs.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// Exists reports whether path is a stored image.
func (s *ImageStore) Exists(path string) bool {
	if !s.Owns(path) {
		return false
	}
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

// UsedBytes sums the sizes of the stored images.
func (s *ImageStore) UsedBytes(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	entries, err := afero.ReadDir(s.fs, s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list images: %w", err)
	}

	var total int64
	for _, e := range entries {
		if e.Mode().IsRegular() {
			total += e.Size()
		}
	}
	return total, nil
}

// Clear deletes every stored image and recreates the empty directory.
func (s *ImageStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("clear images: %w", err)
	}
	return s.ensureDir()
}
