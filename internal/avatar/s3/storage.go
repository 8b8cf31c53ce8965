package s3

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"path"

	"github.com/bornholm/breathe/internal/avatar"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/rs/xid"
)

const prefix = "avatars"

type Storage struct {
	client    *minio.Client
	bucket    string
	publicURL *url.URL
}

// Put implements avatar.Storage.
func (s *Storage) Put(ctx context.Context, owner string, r io.Reader, size int64, contentType string) (string, error) {
	ext, allowed := avatar.Extension(contentType)
	if !allowed {
		return "", errors.Errorf("unsupported avatar content type '%s'", contentType)
	}

	key := path.Join(prefix, owner, xid.New().String()+ext)

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "could not put object '%s'", key)
	}

	slog.DebugContext(ctx, "avatar stored", slog.String("key", info.Key), slog.Int64("size", info.Size))

	return s.publicURL.JoinPath(key).String(), nil
}

func (s *Storage) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.WithStack(err)
	}

	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func NewStorage(client *minio.Client, bucket string, publicURL *url.URL) *Storage {
	return &Storage{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
	}
}

var _ avatar.Storage = &Storage{}
