// Package registry maps implementation types to factories building them
// from loosely typed options, as found in configuration files.
package registry

import (
	"slices"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

var ErrNotRegistered = errors.New("not registered")

type Factory[T any] func(options any) (T, error)

type Registry[T any] struct {
	mutex     sync.RWMutex
	factories map[string]Factory[T]
}

func (r *Registry[T]) Register(name string, factory Factory[T]) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.factories == nil {
		r.factories = make(map[string]Factory[T])
	}

	r.factories[name] = factory
}

func (r *Registry[T]) New(name string, options any) (T, error) {
	r.mutex.RLock()
	factory, exists := r.factories[name]
	r.mutex.RUnlock()

	if !exists {
		var zero T
		return zero, errors.Wrapf(ErrNotRegistered, "could not find '%s'", name)
	}

	value, err := factory(options)
	if err != nil {
		var zero T
		return zero, errors.WithStack(err)
	}

	return value, nil
}

func (r *Registry[T]) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// DecodeOptions decodes raw options into opts, converting duration strings
// on the way.
func DecodeOptions(raw any, opts any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(mapstructure.StringToTimeDurationHookFunc()),
		WeaklyTypedInput: true,
		Result:           opts,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := decoder.Decode(raw); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
