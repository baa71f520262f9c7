// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	shaderSuffix = ".spv"
	spirvMagic   = 0x07230203
)

// shaderTypeOf reads the type from a file name like triangle.vert.spv.
// The name must have exactly two dots: name, type, and the .spv suffix
// that marks a compiled shader.
func shaderTypeOf(name string) ShaderType {
	if !strings.HasSuffix(name, shaderSuffix) {
		return UnknownShaderType
	}
	nodes := strings.Split(strings.TrimSuffix(name, shaderSuffix), ".")
	if len(nodes) != 2 {
		return UnknownShaderType
	}
	switch nodes[1] {
	case "vert":
		return VertexShaderType
	case "frag":
		return FragmentShaderType
	default:
		return UnknownShaderType
	}
}

// loadShaderFilesFromDirectory finds the compiled shaders in dir, at
// most one per type. Files of unknown type are skipped.
func loadShaderFilesFromDirectory(dir string) (map[ShaderType]string, error) {
	shaders := make(map[ShaderType]string)
	if err := filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}
		st := shaderTypeOf(f.Name())
		if st == UnknownShaderType {
			return nil
		}
		if prev, ok := shaders[st]; ok {
			return errors.Errorf("both %s and %s are %s shaders", prev, path, st)
		}
		shaders[st] = path
		return nil
	}); err != nil {
		return nil, err
	}
	return shaders, nil
}

// validateSPIRV checks the blob is word aligned and starts with the
// SPIR-V magic number in either byte order.
func validateSPIRV(code []byte) error {
	_, err := spirvWords(code)
	return err
}

// spirvWords decodes a SPIR-V blob into the words handed to the driver.
// The byte order is taken from the magic number, so the first word is
// always the magic in host order.
func spirvWords(code []byte) ([]uint32, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Wrapf(ErrInvalidShader, "length %d is not a multiple of 4", len(code))
	}

	var order binary.ByteOrder
	switch uint32(spirvMagic) {
	case binary.LittleEndian.Uint32(code):
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(code):
		order = binary.BigEndian
	default:
		return nil, errors.Wrap(ErrInvalidShader, "missing magic number")
	}

	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = order.Uint32(code[i*4:])
	}
	return words, nil
}

func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}

// contains reports whether name is in list, ignoring NUL terminators.
func contains(list []string, name string) bool {
	name = strings.TrimSuffix(name, "\x00")
	for _, l := range list {
		if strings.TrimSuffix(l, "\x00") == name {
			return true
		}
	}
	return false
}
