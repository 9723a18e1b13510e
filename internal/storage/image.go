// Package storage keeps uploaded recipe images outside the database and
// hands back the reference stored on the recipe.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// UploadDir is the key prefix for recipe images.
const UploadDir = "recipes"

// ErrUnsupportedImage is returned when uploaded content is not an accepted image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore persists images and resolves references to URLs.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader) (string, error)
	URL(ctx context.Context, ref string) (string, error)
	Delete(ctx context.Context, ref string) error
	Backend() string
}

// Image is sniffed upload content ready to be stored.
type Image struct {
	Body        io.Reader
	ContentType string
	Ext         string
}

// DetectImage sniffs the content type of r and rejects anything that is not
// an accepted image. The returned Body replays the sniffed prefix.
func DetectImage(r io.Reader) (*Image, error) {
	header := make([]byte, 3072)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	header = header[:n]

	mtype := mimetype.Detect(header)
	ext, ok := allowedTypes[mtype.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
	}
	return &Image{
		Body:        io.MultiReader(bytes.NewReader(header), r),
		ContentType: mtype.String(),
		Ext:         ext,
	}, nil
}

// newObjectKey returns recipes/<uuid><ext>.
func newObjectKey(ext string) string {
	return path.Join(UploadDir, uuid.NewString()+ext)
}
