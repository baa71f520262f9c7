// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shaders holds the GLSL for the triangle pipeline. The compiled
// SPIR-V is loaded from this directory, packed into the binary by packr,
// or bundled into a kar archive with cmd/kar:
//
//	kar -c shaders -f shaders.kar
package shaders

//go:generate glslangValidator -V triangle.vert -o triangle.vert.spv
//go:generate glslangValidator -V triangle.frag -o triangle.frag.spv
