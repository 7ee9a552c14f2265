// Package images stores uploaded recipe images and derives their BlurHash
// placeholders.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// RecipeSubdir is where recipe images live under the media root.
const RecipeSubdir = "recipes"

// MaxImageBytes caps a decoded upload.
const MaxImageBytes = 8 << 20

// ErrInvalidImage is returned when an upload is not a decodable image.
var ErrInvalidImage = errors.New("invalid image")

// extensions maps image.DecodeConfig format names to file extensions.
var extensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// StoredImage describes a saved upload.
type StoredImage struct {
	Name     string // file name within the storage directory
	URL      string // public path, e.g. /media/recipes/<name>
	BlurHash string // empty if the placeholder could not be computed
}

// Storage manages image files in one directory. Safe for concurrent use.
type Storage struct {
	basePath  string
	urlPrefix string
	mu        sync.RWMutex
}

// NewStorage creates storage for recipe images under mediaRoot. Files are
// served at /media/recipes/.
func NewStorage(mediaRoot string) (*Storage, error) {
	return NewStorageWithSubdir(mediaRoot, RecipeSubdir)
}

// NewStorageWithSubdir creates storage in {mediaRoot}/{subdir}, served at
// /media/{subdir}/.
func NewStorageWithSubdir(mediaRoot, subdir string) (*Storage, error) {
	if mediaRoot == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	storagePath := filepath.Join(mediaRoot, subdir)
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{
		basePath:  storagePath,
		urlPrefix: path.Join("/media", subdir) + "/",
	}, nil
}

// IsDataURI reports whether s looks like an inline base64 image.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

// SaveDataURI decodes a "data:image/<type>;base64,<payload>" string,
// verifies it is an image and stores it under a fresh UUID name.
func (s *Storage) SaveDataURI(dataURI string) (*StoredImage, error) {
	data, err := decodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}
	return s.SaveBytes(data)
}

// SaveBytes stores raw image bytes under a fresh UUID name.
func (s *Storage) SaveBytes(data []byte) (*StoredImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageBytes)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	ext, ok := extensions[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidImage, format)
	}

	name := uuid.NewString() + "." + ext
	if err := s.Save(name, data); err != nil {
		return nil, err
	}

	// The placeholder is best-effort; an image that decodes its header but
	// not its pixels is still stored.
	hash, _ := ComputeBlurHashFromBytes(data) //nolint:errcheck // optional placeholder

	return &StoredImage{
		Name:     name,
		URL:      s.URL(name),
		BlurHash: hash,
	}, nil
}

// Save writes data as the named file.
func (s *Storage) Save(name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

// Get reads the named file.
func (s *Storage) Get(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image not found for %s: %w", name, err)
		}
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// Exists checks whether the named file exists.
func (s *Storage) Exists(name string) bool {
	if validName(name) != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Delete removes the named file. Missing files are not an error.
func (s *Storage) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// DeleteURL removes the file behind a URL returned by URL. URLs outside this
// storage (external references) are ignored.
func (s *Storage) DeleteURL(url string) error {
	name, ok := strings.CutPrefix(url, s.urlPrefix)
	if !ok || name == "" {
		return nil
	}
	return s.Delete(name)
}

// Path returns the filesystem path of the named file.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

// URL returns the public path of the named file.
func (s *Storage) URL(name string) string {
	return s.urlPrefix + name
}

// Dir returns the storage directory.
func (s *Storage) Dir() string {
	return s.basePath
}

// validName rejects names that could escape the storage directory.
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid image name %q", name)
	}
	return nil
}

// decodeDataURI extracts the payload of a base64 image data URI.
func decodeDataURI(dataURI string) ([]byte, error) {
	header, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !IsDataURI(header) || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: expected data:image/<type>;base64,<payload>", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %v", ErrInvalidImage, err)
	}
	return data, nil
}
