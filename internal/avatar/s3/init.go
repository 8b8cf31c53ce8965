package s3

import (
	"context"
	"net/url"
	"time"

	"github.com/bornholm/breathe/internal/avatar"
	"github.com/bornholm/breathe/internal/registry"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

const Type avatar.Type = "s3"

func init() {
	avatar.Register(Type, CreateStorageFromOptions)
}

func CreateStorageFromOptions(options any) (avatar.Storage, error) {
	opts := Options{}

	if err := registry.DecodeOptions(options, &opts); err != nil {
		return nil, errors.Wrapf(err, "could not parse '%s' avatar storage options", Type)
	}

	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.Errorf("'%s' avatar storage: 'endpoint' and 'bucket' options are required", Type)
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.Secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	rawPublicURL := opts.PublicURL
	if rawPublicURL == "" {
		rawPublicURL = client.EndpointURL().JoinPath(opts.Bucket).String()
	}

	publicURL, err := url.Parse(rawPublicURL)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse '%s' avatar storage public url", Type)
	}

	storage := NewStorage(client, opts.Bucket, publicURL)

	if opts.CreateBucket {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := storage.ensureBucket(ctx, opts.Region); err != nil {
			return nil, errors.Wrapf(err, "could not create bucket '%s'", opts.Bucket)
		}
	}

	return storage, nil
}
