// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/trigon/core"
)

// SDLWindow is a Vulkan window backed by SDL2.
type SDLWindow struct {
	window *sdl.Window
	closed bool
}

// NewSDLWindow initialises SDL with its Vulkan loader and opens a window.
func NewSDLWindow(cfg core.WindowConfiguration) (*SDLWindow, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, errors.Wrap(err, "sdl.Init()")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}

	flags := uint32(sdl.WINDOW_VULKAN)
	if cfg.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}
	if cfg.Hidden {
		flags |= sdl.WINDOW_HIDDEN
	}

	window, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &SDLWindow{window: window}, nil
}

func (w *SDLWindow) handle(event sdl.Event) {
	switch et := event.(type) {
	case *sdl.KeyboardEvent:
		if et.Keysym.Sym == sdl.K_ESCAPE {
			w.closed = true
		}
	case *sdl.QuitEvent:
		w.closed = true
	}
}

// ShouldClose implements core.Window
func (w *SDLWindow) ShouldClose() bool {
	return w.closed
}

// PollEvents implements core.Window
func (w *SDLWindow) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handle(event)
	}
}

// WaitEvents implements core.Window
func (w *SDLWindow) WaitEvents() {
	if event := sdl.WaitEvent(); event != nil {
		w.handle(event)
	}
	w.PollEvents()
}

// DrawableSize implements core.Window
func (w *SDLWindow) DrawableSize() (uint32, uint32) {
	width, height := w.window.VulkanGetDrawableSize()
	return drawableSize(int(width), int(height))
}

// RequiredInstanceExtensions implements core.Window
func (w *SDLWindow) RequiredInstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// ProcAddr implements core.Window
func (w *SDLWindow) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// CreateSurface implements core.Window
func (w *SDLWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := w.window.VulkanCreateSurface(instance)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	return vk.SurfaceFromPointer(uintptr(surface)), nil
}

// Destroy implements core.Window
func (w *SDLWindow) Destroy() {
	if w.window == nil {
		return
	}
	w.window.Destroy()
	w.window = nil
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}
