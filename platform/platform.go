// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package platform opens a Vulkan capable window with SDL2 or GLFW.
// Windows must be created and driven from the main OS thread.
package platform

import (
	"github.com/pkg/errors"

	"github.com/devblok/trigon/core"
)

// Open creates a window with the backend named in cfg.
func Open(cfg core.WindowConfiguration) (core.Window, error) {
	switch cfg.Backend {
	case core.BackendSDL, "":
		window, err := NewSDLWindow(cfg)
		if err != nil {
			return nil, err
		}
		return window, nil
	case core.BackendGLFW:
		window, err := NewGLFWWindow(cfg)
		if err != nil {
			return nil, err
		}
		return window, nil
	default:
		return nil, errors.Errorf("unknown window backend %q", cfg.Backend)
	}
}

func drawableSize(width, height int) (uint32, uint32) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return uint32(width), uint32(height)
}
