// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/trigon/core"
)

// GLFWWindow is a Vulkan window backed by GLFW.
type GLFWWindow struct {
	window *glfw.Window
}

// NewGLFWWindow initialises GLFW and opens a window without a GL context.
func NewGLFWWindow(cfg core.WindowConfiguration) (*GLFWWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw.Init()")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw: vulkan is not supported")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(cfg.Resizable))
	glfw.WindowHint(glfw.Visible, glfwBool(!cfg.Hidden))

	window, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "glfw.CreateWindow()")
	}
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})
	return &GLFWWindow{window: window}, nil
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// ShouldClose implements core.Window
func (w *GLFWWindow) ShouldClose() bool {
	return w.window.ShouldClose()
}

// PollEvents implements core.Window
func (w *GLFWWindow) PollEvents() {
	glfw.PollEvents()
}

// WaitEvents implements core.Window
func (w *GLFWWindow) WaitEvents() {
	glfw.WaitEvents()
}

// DrawableSize implements core.Window
func (w *GLFWWindow) DrawableSize() (uint32, uint32) {
	return drawableSize(w.window.GetFramebufferSize())
}

// RequiredInstanceExtensions implements core.Window
func (w *GLFWWindow) RequiredInstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

// ProcAddr implements core.Window
func (w *GLFWWindow) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// CreateSurface implements core.Window
func (w *GLFWWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surface, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "glfw.CreateWindowSurface()")
	}
	return vk.SurfaceFromPointer(surface), nil
}

// Destroy implements core.Window
func (w *GLFWWindow) Destroy() {
	if w.window == nil {
		return
	}
	w.window.Destroy()
	w.window = nil
	glfw.Terminate()
}
