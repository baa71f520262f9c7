// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core brings up the Vulkan presentation pipeline for a window
// and drives the per-frame acquire, record, submit and present loop.
package core

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Window is the platform layer the renderer presents into.
type Window interface {
	// ShouldClose reports whether the user asked to close the window
	ShouldClose() bool

	// PollEvents processes pending events without blocking
	PollEvents()

	// WaitEvents blocks until at least one event arrives
	WaitEvents()

	// DrawableSize returns the size of the drawable area in pixels
	DrawableSize() (width, height uint32)

	// RequiredInstanceExtensions lists instance extensions the
	// platform needs to create a surface
	RequiredInstanceExtensions() []string

	// ProcAddr returns vkGetInstanceProcAddr as loaded by the platform,
	// nil means the default loader is used
	ProcAddr() unsafe.Pointer

	// CreateSurface creates a presentable surface for the instance
	CreateSurface(vk.Instance) (vk.Surface, error)

	// Destroy closes the window
	Destroy()
}

// ShaderSource supplies precompiled SPIR-V for the triangle pipeline.
type ShaderSource interface {
	Shaders() (vertex, fragment []byte, err error)
}

// Renderer describes the rendering machinery.
type Renderer interface {
	// Draw renders and presents one frame
	Draw() (DrawResult, error)

	// Recover rebuilds what a stale surface invalidated
	Recover() error

	// Destroy waits for the device to go idle and releases everything
	Destroy()
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (s ShaderType) String() string {
	switch s {
	case VertexShaderType:
		return "vertex"
	case FragmentShaderType:
		return "fragment"
	default:
		return "unknown"
	}
}

// DrawResult is the outcome of one frame.
type DrawResult int

// Frame outcomes
const (
	// DrawOk means the frame was presented
	DrawOk DrawResult = iota
	// DrawNeedRecreate means the surface went stale, the swapchain
	// must be recreated before the next frame
	DrawNeedRecreate
	// DrawError means the frame failed and the loop should stop
	DrawError
)

func (d DrawResult) String() string {
	switch d {
	case DrawOk:
		return "ok"
	case DrawNeedRecreate:
		return "need recreate"
	default:
		return "error"
	}
}
