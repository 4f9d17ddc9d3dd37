package asset

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var (
	ErrNoS3Client   = errors.New("resource: no s3 client configured")
	ErrInvalidS3URL = errors.New("resource: invalid s3 url")
)

// Connection settings for an S3 compatible object store.
type S3Config struct {
	AccessKey string
	SecretKey string
	Endpoint  string
	Region    string
}

// Returns true if enough settings are present to establish a session.
func (cfg S3Config) Enabled() bool {
	return cfg.Region != "" || cfg.Endpoint != ""
}

// Create an S3 client. Static credentials are used when an access key is
// supplied; otherwise the default aws credential chain applies.
func NewS3Client(cfg S3Config) (s3iface.S3API, error) {
	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("resource: failed to create s3 session: %w", err)
	}
	return s3.New(sess), nil
}

// Returns true if path uses the s3:// scheme.
func IsS3URL(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// Split an s3://bucket/key URL into its bucket and key parts.
func ParseS3URL(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidS3URL, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidS3URL, path)
	}

	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("%w: missing object key in %q", ErrInvalidS3URL, path)
	}
	return u.Host, key, nil
}
