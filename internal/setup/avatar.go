package setup

import (
	"context"

	"github.com/bornholm/breathe/internal/avatar"
	"github.com/bornholm/breathe/internal/config"
	"github.com/pkg/errors"

	_ "github.com/bornholm/breathe/internal/avatar/s3"
)

var NewAvatarStorageFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (avatar.Storage, error) {
	var options map[string]any
	if conf.Avatar.Options != nil {
		options = conf.Avatar.Options.Data
	}

	storage, err := avatar.New(avatar.Type(conf.Avatar.Type), options)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return storage, nil
})
