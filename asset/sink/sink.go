package sink

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/achilleasa/skytrace/asset"
	"github.com/achilleasa/skytrace/log"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Maximum time allowed for uploading a single frame.
const UploadTimeout = 30 * time.Second

// A FrameSink writes rendered frames as PNG images to local files or to
// s3://bucket/key destinations.
type FrameSink struct {
	logger log.Logger

	// Optional client for s3 destinations.
	S3 s3iface.S3API
}

func New(s3Client s3iface.S3API) *FrameSink {
	return &FrameSink{
		logger: log.New("frame sink"),
		S3:     s3Client,
	}
}

// Encode img as PNG and write it to dest.
func (fs *FrameSink) Write(ctx context.Context, dest string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("sink: could not encode frame: %w", err)
	}

	if asset.IsS3URL(dest) {
		return fs.upload(ctx, dest, buf.Bytes())
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("sink: could not create output dir: %w", err)
		}
	}
	if err := ioutil.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("sink: could not write %s: %w", dest, err)
	}

	fs.logger.Infof("wrote frame to %s (%d bytes)", dest, buf.Len())
	return nil
}

func (fs *FrameSink) upload(ctx context.Context, dest string, data []byte) error {
	if fs.S3 == nil {
		return fmt.Errorf("sink: could not upload %s: %w", dest, asset.ErrNoS3Client)
	}

	bucket, key, err := asset.ParseS3URL(dest)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	size := int64(len(data))
	_, err = fs.S3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("image/png"),
	})
	if err != nil {
		return fmt.Errorf("sink: failed to upload %s: %w", dest, err)
	}

	fs.logger.Infof("uploaded %s (%d bytes)", dest, size)
	return nil
}
