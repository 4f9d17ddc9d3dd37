package asset

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// The Resource class wraps a streamable file or remote Resource.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Return the remote path to this resource. If this is a remote resource then
// this method returns the base path (without leading /) of the remote URL.
// Otherwise, this method returns the same value as Path().
func (r *Resource) RemotePath() string {
	if r.IsRemote() {
		return filepath.Base(r.url.Path)
	}
	return r.Path()
}

// Returns true if the Resource is streamed over http/https or s3.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// An Opener creates resource streams. Its zero value can open local files
// and http/https URLs; s3 URLs additionally require an S3 client.
type Opener struct {
	HTTPClient *http.Client
	S3         s3iface.S3API
}

var defaultOpener = &Opener{}

// Create a new Resource data stream using an opener without s3 support.
// See Opener.Open for details.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	return defaultOpener.Open(context.Background(), pathToResource, relTo)
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// does not define a scheme, then the path to the new Resource will be generated
// by concatenating the base path of relTo and pathToResource.
//
// The caller must make sure to close the returned Resource to prevent mem leaks.
func (o *Opener) Open(ctx context.Context, pathToResource string, relTo *Resource) (*Resource, error) {
	// Replace forward slashes with backslaces and try parsing as a URL
	url, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	// If this is a relative url, clone parent url and adjust its path
	if url.Scheme == "" && relTo != nil {
		path := url.Path
		url, _ = url.Parse(relTo.url.String())
		prefix := url.Path
		if url.Scheme == "" {
			prefix, err = filepath.Abs(relTo.url.String())
			if err != nil {
				return nil, fmt.Errorf("resource: could not detect abs path for %s; %s", relTo.url.String(), err.Error())
			}
		}
		url.Path = filepath.Dir(prefix) + "/" + path
	}

	var reader io.ReadCloser
	switch url.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(url.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		reader, err = o.openHTTP(ctx, url)
		if err != nil {
			return nil, err
		}
	case "s3":
		reader, err = o.openS3(ctx, url)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("resource: unsupported scheme '%s'", url.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        url,
	}, nil
}

func (o *Opener) openHTTP(ctx context.Context, url *url.URL) (io.ReadCloser, error) {
	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %s", url.String(), err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %s", url.String(), err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("resource: could not fetch '%s': status %d", url.String(), resp.StatusCode)
	}
	return resp.Body, nil
}

func (o *Opener) openS3(ctx context.Context, url *url.URL) (io.ReadCloser, error) {
	if o.S3 == nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %w", url.String(), ErrNoS3Client)
	}

	bucket, key, err := ParseS3URL(url.String())
	if err != nil {
		return nil, err
	}
	out, err := o.S3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %w", url.String(), err)
	}
	return out.Body, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	url, _ := url.Parse(name)
	return &Resource{
		ReadCloser: ioutil.NopCloser(source),
		url:        url,
	}
}
