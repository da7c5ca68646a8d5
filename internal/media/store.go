// Package media stores recipe images on the local filesystem.
//
// Images arrive as base64 data URIs, are decoded with imaging, fitted into a
// bounding box and re-encoded as JPEG so every stored file has one format
// regardless of what the client uploaded.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

const (
	// MaxWidth and MaxHeight bound the stored image; larger uploads are
	// downscaled preserving aspect ratio, smaller ones are kept as is.
	MaxWidth  = 1280
	MaxHeight = 1280

	// MaxPixels caps the declared size of an upload. Compressed formats can
	// declare dimensions far beyond their byte size, and decoding allocates
	// for every pixel.
	MaxPixels = 40_000_000

	jpegQuality = 85
	recipesDir  = "recipes"
)

// Store writes images below root and builds public URLs below baseURL.
type Store struct {
	root    string
	baseURL string
}

// NewStore constructs a Store. root is created on first write.
func NewStore(root, baseURL string) *Store {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Store{root: root, baseURL: baseURL}
}

// SaveBase64 decodes a data URI of the form data:image/<fmt>;base64,<payload>
// and stores it as recipes/<uuid>.jpg. It returns the path relative to the
// store root, which is what recipes persist.
// Returns domain.ErrValidation if the URI or the image payload is malformed,
// or if the picture declares more than MaxPixels pixels.
func (s *Store) SaveBase64(ctx context.Context, dataURI string) (string, error) {
	raw, err := decodeDataURI(dataURI)
	if err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: image: cannot decode picture", domain.ErrValidation)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("%w: image: %dx%d exceeds %d pixels", domain.ErrValidation, cfg.Width, cfg.Height, MaxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: image: cannot decode picture", domain.ErrValidation)
	}
	img = imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, recipesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media.Store.SaveBase64: %w", err)
	}

	// Write to a temp file first so a crash never leaves a truncated image
	// under its final name.
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("media.Store.SaveBase64: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if err := imaging.Encode(tmp, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("media.Store.SaveBase64: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("media.Store.SaveBase64: %w", err)
	}

	rel := path.Join(recipesDir, uuid.NewString()+".jpg")
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, filepath.FromSlash(rel))); err != nil {
		return "", fmt.Errorf("media.Store.SaveBase64: %w", err)
	}
	return rel, nil
}

// Remove deletes a previously stored image. Missing files are not an error.
func (s *Store) Remove(_ context.Context, rel string) error {
	if rel == "" {
		return nil
	}
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media.Store.Remove: %w", err)
	}
	return nil
}

// URL returns the public URL of a stored image, or "" when rel is empty.
func (s *Store) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.baseURL + strings.TrimPrefix(rel, "/")
}

// Root returns the directory images are stored under.
func (s *Store) Root() string {
	return s.root
}

// resolve maps rel onto the filesystem, refusing paths that escape root.
func (s *Store) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", fmt.Errorf("media.Store: invalid path %q", rel)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// decodeDataURI returns the payload bytes of a base64 image data URI.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, fmt.Errorf("%w: image: expected a data URI", domain.ErrValidation)
	}
	mediaType, ok := strings.CutPrefix(meta, "data:")
	if !ok || !strings.HasPrefix(mediaType, "image/") || !strings.HasSuffix(mediaType, ";base64") {
		return nil, fmt.Errorf("%w: image: expected data:image/<format>;base64,<payload>", domain.ErrValidation)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: image: invalid base64 payload", domain.ErrValidation)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: image: empty payload", domain.ErrValidation)
	}
	return raw, nil
}
