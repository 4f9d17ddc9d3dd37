package io

import (
	"context"
	"fmt"
	"strings"

	"github.com/achilleasa/skytrace/asset"
	"github.com/achilleasa/skytrace/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// The Writer interface is implemented by all scene writers.
type Writer interface {
	// Write scene definition.
	Write(*scene.Scene) error
}

// Read scene from a local file or remote resource using the default opener.
func ReadScene(filename string) (*scene.Scene, error) {
	return ReadSceneWith(context.Background(), &asset.Opener{}, filename)
}

// Read scene using the supplied resource opener.
func ReadSceneWith(ctx context.Context, opener *asset.Opener, filename string) (*scene.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	if strings.HasSuffix(filename, ".zip") {
		reader = newZipSceneReader()
	} else {
		return nil, fmt.Errorf("readScene: unsupported file format")
	}

	res, err := opener.Open(ctx, filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}

// Write scene to a local file.
func WriteScene(sc *scene.Scene, filename string) error {
	var writer Writer
	if strings.HasSuffix(filename, ".zip") {
		writer = newZipSceneWriter(filename)
	} else {
		return fmt.Errorf("writeScene: unsupported file format")
	}
	return writer.Write(sc)
}
