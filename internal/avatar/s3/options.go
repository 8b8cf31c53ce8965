package s3

type Options struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyId" yaml:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey" yaml:"secretAccessKey"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Region          string `mapstructure:"region" yaml:"region"`
	Secure          bool   `mapstructure:"secure" yaml:"secure"`
	// PublicURL is the base URL under which stored objects are served.
	// Defaults to the endpoint URL followed by the bucket name.
	PublicURL    string `mapstructure:"publicUrl" yaml:"publicUrl"`
	CreateBucket bool   `mapstructure:"createBucket" yaml:"createBucket"`
}
