package avatar

import (
	"context"
	"io"

	"github.com/bornholm/breathe/internal/registry"
	"github.com/pkg/errors"
)

type Type string

// TypeNone disables avatar uploads.
const TypeNone Type = "none"

type CreateStorageFunc func(options any) (Storage, error)

var storages registry.Registry[Storage]

func init() {
	Register(TypeNone, func(options any) (Storage, error) {
		return noneStorage{}, nil
	})
}

func Register(storageType Type, fn CreateStorageFunc) {
	storages.Register(string(storageType), registry.Factory[Storage](fn))
}

func New(storageType Type, options any) (Storage, error) {
	storage, err := storages.New(string(storageType), options)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create avatar storage '%s'", storageType)
	}

	return storage, nil
}

func Registered() []Type {
	names := storages.Names()

	types := make([]Type, 0, len(names))
	for _, n := range names {
		types = append(types, Type(n))
	}

	return types
}

// Enabled reports whether storage accepts uploads.
func Enabled(storage Storage) bool {
	if storage == nil {
		return false
	}

	_, isNone := storage.(noneStorage)

	return !isNone
}

type noneStorage struct{}

func (noneStorage) Put(ctx context.Context, owner string, r io.Reader, size int64, contentType string) (string, error) {
	return "", errors.WithStack(ErrNotSupported)
}
