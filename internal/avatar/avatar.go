// Package avatar stores profile pictures uploaded by visitors.
package avatar

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

var ErrNotSupported = errors.New("not supported")

type Storage interface {
	// Put stores the content of r under a key derived from owner and returns
	// the public URL of the stored image.
	Put(ctx context.Context, owner string, r io.Reader, size int64, contentType string) (string, error)
}

// AllowedContentTypes maps accepted image types to their file extension.
var AllowedContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func Extension(contentType string) (string, bool) {
	ext, exists := AllowedContentTypes[contentType]
	return ext, exists
}
