package config

import (
	"bytes"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

type Config struct {
	Logger  Logger  `yaml:"logger"`
	HTTP    HTTP    `yaml:"http"`
	Auth    Auth    `yaml:"auth"`
	Account Account `yaml:"account"`
	Store   Store   `yaml:"store"`
	Avatar  Avatar  `yaml:"avatar"`
	UI      UI      `yaml:"ui"`
	Debug   Debug   `yaml:"debug"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Logger:  NewDefaultLoggerConfig(),
		HTTP:    NewDefaultHTTPConfig(),
		Auth:    NewDefaultAuthConfig(),
		Account: NewDefaultAccountConfig(),
		Store:   NewDefaultStoreConfig(),
		Avatar:  NewDefaultAvatarConfig(),
		UI:      NewDefaultUIConfig(),
		Debug:   NewDefaultDebugConfig(),
	}
}

// Interpolate round-trips the configuration through its YAML form so
// that every ${VAR} reference of the defaults gets expanded.
func Interpolate(conf *Config) error {
	var buff bytes.Buffer

	if err := Dump(&buff, conf); err != nil {
		return errors.WithStack(err)
	}

	if err := Load(&buff, conf); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func LoadFile(path string, conf *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}

	defer file.Close()

	if err := Load(file, conf); err != nil {
		return errors.Wrapf(err, "could not load '%s'", path)
	}

	return nil
}

func Load(r io.Reader, conf *Config) error {
	decoder := yaml.NewDecoder(r)

	if err := decoder.Decode(conf); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

var sections = map[string]yaml.CommentMap{
	"$.logger":  NewLoggerConfigCommentMap(),
	"$.http":    NewHTTPConfigCommentMap(),
	"$.auth":    NewAuthConfigCommentMap(),
	"$.account": NewAccountConfigCommentMap(),
	"$.store":   NewStoreConfigCommentMap(),
	"$.avatar":  NewAvatarConfigCommentMap(),
	"$.ui":      NewUIConfigCommentMap(),
	"$.debug":   NewDebugConfigCommentMap(),
}

func Dump(w io.Writer, conf *Config) error {
	configComments := yaml.CommentMap{}
	for configSelector, sectionComments := range sections {
		for sectionSelector, comments := range sectionComments {
			configComments[configSelector+sectionSelector] = comments
		}
	}

	encoder := yaml.NewEncoder(w, yaml.WithComment(configComments))
	defer encoder.Close()

	if err := encoder.Encode(conf); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
