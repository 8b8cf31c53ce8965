package remote

import "time"

type Options struct {
	BaseURL string        `mapstructure:"baseUrl" yaml:"baseUrl"`
	AppID   string        `mapstructure:"appId" yaml:"appId"`
	Token   string        `mapstructure:"token" yaml:"token"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

func NewDefaultOptions() Options {
	return Options{
		Timeout: 10 * time.Second,
	}
}
