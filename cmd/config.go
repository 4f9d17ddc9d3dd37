package cmd

import (
	"os"

	"github.com/achilleasa/skytrace/asset"
	"github.com/joho/godotenv"
	"github.com/urfave/cli"
)

// Environment variables holding the object store settings.
const (
	envS3AccessKey = "SKYTRACE_S3_ACCESS_KEY"
	envS3SecretKey = "SKYTRACE_S3_SECRET_KEY"
	envS3Endpoint  = "SKYTRACE_S3_ENDPOINT"
	envS3Region    = "SKYTRACE_S3_REGION"
)

// Load the env file selected by the global --env flag. A missing file is not
// an error. Values already present in the environment are not overwritten.
// Must run before command flags are parsed so that their EnvVar fallbacks
// can see the loaded values.
func LoadEnv(ctx *cli.Context) error {
	envFile := ctx.GlobalString("env")
	if envFile == "" {
		envFile = ctx.String("env")
	}
	if envFile == "" {
		return nil
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(envFile)
}

func s3ConfigFromEnv() asset.S3Config {
	return asset.S3Config{
		AccessKey: os.Getenv(envS3AccessKey),
		SecretKey: os.Getenv(envS3SecretKey),
		Endpoint:  os.Getenv(envS3Endpoint),
		Region:    os.Getenv(envS3Region),
	}
}

// Create a resource opener. An s3 client is attached when object store
// settings are present in the environment.
func newOpener() (*asset.Opener, error) {
	opener := &asset.Opener{}

	cfg := s3ConfigFromEnv()
	if !cfg.Enabled() {
		return opener, nil
	}

	client, err := asset.NewS3Client(cfg)
	if err != nil {
		return nil, err
	}
	opener.S3 = client
	logger.Infof("enabled s3 support (endpoint: %q, region: %q)", cfg.Endpoint, cfg.Region)

	return opener, nil
}
