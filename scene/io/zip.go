package io

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/achilleasa/skytrace/asset"
	"github.com/achilleasa/skytrace/log"
	"github.com/achilleasa/skytrace/scene"
)

const (
	dataFile = "scene.bin"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write scene definition to zip file.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef(`writing compressed scene to "%s"`, w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)

	cw, err := zw.Create(dataFile)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(cw).Encode(sc)
	if err != nil {
		return fmt.Errorf("zipSceneWriter: failed to encode scene: %s", err.Error())
	}

	if err = zw.Close(); err != nil {
		return err
	}

	w.logger.Noticef("compressed scene with %d spheres in %d ms", len(sc.Spheres), time.Since(start).Nanoseconds()/1000000)
	return nil
}

type zipSceneReader struct {
	logger log.Logger
}

// Create a new zip scene reader
func newZipSceneReader() *zipSceneReader {
	return &zipSceneReader{
		logger: log.New("zip reader"),
	}
}

// Read scene definition from zip file.
func (p *zipSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`parsing compiled scene from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := ioutil.ReadAll(sceneRes)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var sc *scene.Scene
	for _, f := range zr.File {
		switch f.Name {
		case dataFile:
		default:
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		sc = &scene.Scene{}
		err = gob.NewDecoder(rc).Decode(sc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zipSceneReader: failed to load %s: %s", f.Name, err.Error())
		}
	}

	if sc == nil {
		return nil, fmt.Errorf("zipSceneReader: missing %s in %s", dataFile, sceneRes.Path())
	}

	// Re-add decoded spheres so they pass the same checks as generated ones
	decoded := sc.Spheres
	sc.Spheres = make([]scene.Sphere, 0, len(decoded))
	for index, sphere := range decoded {
		if err = sc.AddSphere(sphere); err != nil {
			return nil, fmt.Errorf("zipSceneReader: invalid sphere %d in %s: %w", index, sceneRes.Path(), err)
		}
	}

	p.logger.Noticef("loaded scene with %d spheres in %d ms", len(sc.Spheres), time.Since(start).Nanoseconds()/1000000)
	return sc, nil
}
