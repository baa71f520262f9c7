// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"io/ioutil"
	"path/filepath"

	"github.com/gobuffalo/packd"
	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"

	"github.com/devblok/trigon/utility/kar"
)

// NewShaderSource returns the source named by cfg.
func NewShaderSource(cfg ShaderConfiguration) (ShaderSource, error) {
	switch cfg.Source {
	case ShaderSourceDirectory:
		return DirectoryShaders{Dir: cfg.Directory}, nil
	case ShaderSourceBox:
		return BoxShaders{Box: packr.NewBox("../shaders")}, nil
	case ShaderSourceArchive:
		return ArchiveShaders{Path: cfg.Archive}, nil
	default:
		return nil, errors.Errorf("unknown shader source %q", cfg.Source)
	}
}

// pickShaders sorts named blobs into the vertex and fragment pair.
func pickShaders(blobs map[string][]byte) (vertex, fragment []byte, err error) {
	for name, code := range blobs {
		switch shaderTypeOf(filepath.Base(name)) {
		case VertexShaderType:
			if vertex != nil {
				return nil, nil, errors.Errorf("more than one vertex shader, %s is extra", name)
			}
			vertex = code
		case FragmentShaderType:
			if fragment != nil {
				return nil, nil, errors.Errorf("more than one fragment shader, %s is extra", name)
			}
			fragment = code
		}
	}
	if vertex == nil {
		return nil, nil, errors.Wrap(ErrShaderMissing, "vertex")
	}
	if fragment == nil {
		return nil, nil, errors.Wrap(ErrShaderMissing, "fragment")
	}
	if err := validateSPIRV(vertex); err != nil {
		return nil, nil, errors.Wrap(err, "vertex shader")
	}
	if err := validateSPIRV(fragment); err != nil {
		return nil, nil, errors.Wrap(err, "fragment shader")
	}
	return vertex, fragment, nil
}

// DirectoryShaders loads *.vert.spv and *.frag.spv files from a directory.
type DirectoryShaders struct {
	Dir string
}

// Shaders implements ShaderSource
func (d DirectoryShaders) Shaders() ([]byte, []byte, error) {
	files, err := loadShaderFilesFromDirectory(d.Dir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "scan %s", d.Dir)
	}
	blobs := make(map[string][]byte, len(files))
	for _, file := range files {
		code, err := ioutil.ReadFile(file)
		if err != nil {
			return nil, nil, err
		}
		blobs[file] = code
	}
	return pickShaders(blobs)
}

// BoxShaders loads shaders embedded with packr.
type BoxShaders struct {
	Box packr.Box
}

// Shaders implements ShaderSource
func (b BoxShaders) Shaders() ([]byte, []byte, error) {
	blobs := make(map[string][]byte)
	if err := b.Box.Walk(func(name string, f packd.File) error {
		if shaderTypeOf(filepath.Base(name)) == UnknownShaderType {
			return nil
		}
		code, err := ioutil.ReadAll(f)
		if err != nil {
			return errors.Wrap(err, name)
		}
		blobs[name] = code
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return pickShaders(blobs)
}

// ArchiveShaders loads shaders from a kar bundle.
type ArchiveShaders struct {
	Path string
}

// Shaders implements ShaderSource
func (a ArchiveShaders) Shaders() ([]byte, []byte, error) {
	r, err := mmap.Open(a.Path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", a.Path)
	}
	defer r.Close()

	archive, err := kar.Open(r)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", a.Path)
	}

	blobs := make(map[string][]byte)
	for _, name := range archive.Names() {
		if shaderTypeOf(filepath.Base(name)) == UnknownShaderType {
			continue
		}
		code, err := archive.ReadAll(name)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "extract %s", name)
		}
		blobs[name] = code
	}
	return pickShaders(blobs)
}
