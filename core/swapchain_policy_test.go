// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"
	"testing"
	"unsafe"

	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/trigon/device"
)

type size struct{ width, height uint32 }

// fakeWindow reports sizes in turn, moving to the next one on every WaitEvents.
type fakeWindow struct {
	sizes      []size
	waits      int
	closeAfter int
}

func (w *fakeWindow) ShouldClose() bool {
	return w.closeAfter > 0 && w.waits >= w.closeAfter
}

func (w *fakeWindow) PollEvents() {}

func (w *fakeWindow) WaitEvents() {
	w.waits++
}

func (w *fakeWindow) DrawableSize() (uint32, uint32) {
	idx := w.waits
	if idx >= len(w.sizes) {
		idx = len(w.sizes) - 1
	}
	return w.sizes[idx].width, w.sizes[idx].height
}

func (w *fakeWindow) RequiredInstanceExtensions() []string { return nil }

func (w *fakeWindow) ProcAddr() unsafe.Pointer { return nil }

func (w *fakeWindow) CreateSurface(vk.Instance) (vk.Surface, error) {
	return vk.NullSurface, errors.New("fake window has no surface")
}

func (w *fakeWindow) Destroy() {}

var _ Window = (*fakeWindow)(nil)

func surfaceSupport() SurfaceSupport {
	return SurfaceSupport{
		Capabilities: vk.SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    8,
			CurrentExtent:    vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
			MinImageExtent:   vk.Extent2D{Width: 16, Height: 16},
			MaxImageExtent:   vk.Extent2D{Width: 640, Height: 480},
			CurrentTransform: vk.SurfaceTransformIdentityBit,
		},
		Formats: []vk.SurfaceFormat{
			{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
	}
}

var sharedFamilies = device.QueueFamilies{Graphics: 0, Present: 0, HasGraphics: true, HasPresent: true}

func TestChooseSurfaceFormat(t *testing.T) {
	c := qt.New(t)

	preferred := chooseSurfaceFormat(surfaceSupport().Formats)
	c.Assert(preferred.Format, qt.Equals, vk.FormatB8g8r8a8Srgb)
	c.Assert(preferred.ColorSpace, qt.Equals, vk.ColorSpaceSrgbNonlinear)

	fallback := chooseSurfaceFormat([]vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	})
	c.Assert(fallback.Format, qt.Equals, vk.FormatR8g8b8a8Unorm)
}

func TestChoosePresentMode(t *testing.T) {
	c := qt.New(t)

	c.Assert(choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}), qt.Equals, vk.PresentModeMailbox)
	c.Assert(choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}), qt.Equals, vk.PresentModeFifo)
	c.Assert(choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}), qt.Equals, vk.PresentModeFifo)
}

func TestChooseExtent(t *testing.T) {
	c := qt.New(t)

	caps := surfaceSupport().Capabilities
	for _, test := range []struct {
		name          string
		width, height uint32
		want          size
	}{
		{"inside", 320, 200, size{320, 200}},
		{"too big", 800, 600, size{640, 480}},
		{"too small", 1, 1000, size{16, 480}},
	} {
		c.Run(test.name, func(c *qt.C) {
			extent := chooseExtent(caps, test.width, test.height)
			c.Assert(size{extent.Width, extent.Height}, qt.Equals, test.want)
		})
	}

	caps.CurrentExtent = vk.Extent2D{Width: 1024, Height: 768}
	extent := chooseExtent(caps, 320, 200)
	c.Assert(size{extent.Width, extent.Height}, qt.Equals, size{1024, 768})
}

func TestChooseImageCount(t *testing.T) {
	c := qt.New(t)

	c.Assert(chooseImageCount(2, 8), qt.Equals, uint32(3))
	c.Assert(chooseImageCount(2, 0), qt.Equals, uint32(3))
	c.Assert(chooseImageCount(3, 3), qt.Equals, uint32(3))
}

func TestPlanSwapchain(t *testing.T) {
	c := qt.New(t)

	plan, err := planSwapchain(surfaceSupport(), 800, 600, sharedFamilies)
	c.Assert(err, qt.IsNil)
	c.Assert(plan, qt.DeepEquals, SwapchainPlan{
		Format:       vk.FormatB8g8r8a8Srgb,
		ColorSpace:   vk.ColorSpaceSrgbNonlinear,
		PresentMode:  vk.PresentModeMailbox,
		Width:        640,
		Height:       480,
		ImageCount:   3,
		PreTransform: vk.SurfaceTransformIdentityBit,
		SharingMode:  vk.SharingModeExclusive,
	})
}

func TestPlanSwapchainSeparateFamilies(t *testing.T) {
	c := qt.New(t)

	families := device.QueueFamilies{Graphics: 0, Present: 2, HasGraphics: true, HasPresent: true}
	plan, err := planSwapchain(surfaceSupport(), 800, 600, families)
	c.Assert(err, qt.IsNil)
	c.Assert(plan.SharingMode, qt.Equals, vk.SharingModeConcurrent)
	c.Assert(plan.Families, qt.DeepEquals, []uint32{0, 2})
}

func TestPlanSwapchainIsRepeatable(t *testing.T) {
	c := qt.New(t)

	first, err := planSwapchain(surfaceSupport(), 500, 400, sharedFamilies)
	c.Assert(err, qt.IsNil)
	second, err := planSwapchain(surfaceSupport(), 500, 400, sharedFamilies)
	c.Assert(err, qt.IsNil)
	c.Assert(second, qt.DeepEquals, first)
}

func TestPlanSwapchainEmptySupport(t *testing.T) {
	c := qt.New(t)

	support := surfaceSupport()
	support.Formats = nil
	_, err := planSwapchain(support, 800, 600, sharedFamilies)
	c.Assert(err, qt.ErrorMatches, "surface reports no formats")

	support = surfaceSupport()
	support.PresentModes = nil
	_, err = planSwapchain(support, 800, 600, sharedFamilies)
	c.Assert(err, qt.ErrorMatches, "surface reports no present modes")
}

func TestWaitForDrawableBlocksWhileEmpty(t *testing.T) {
	c := qt.New(t)

	window := &fakeWindow{sizes: []size{{800, 600}, {0, 0}, {0, 0}, {800, 600}}}
	window.waits = 1

	width, height, err := waitForDrawable(window)
	c.Assert(err, qt.IsNil)
	c.Assert(window.waits, qt.Equals, 3)
	c.Assert(size{width, height}, qt.Equals, size{800, 600})

	extent := chooseExtent(surfaceSupport().Capabilities, width, height)
	c.Assert(size{extent.Width, extent.Height}, qt.Equals, size{640, 480})
}

func TestWaitForDrawableNoWaitWhenVisible(t *testing.T) {
	c := qt.New(t)

	window := &fakeWindow{sizes: []size{{320, 200}}}
	width, height, err := waitForDrawable(window)
	c.Assert(err, qt.IsNil)
	c.Assert(window.waits, qt.Equals, 0)
	c.Assert(size{width, height}, qt.Equals, size{320, 200})
}

func TestWaitForDrawableClosing(t *testing.T) {
	c := qt.New(t)

	window := &fakeWindow{sizes: []size{{0, 0}}, closeAfter: 2}
	_, _, err := waitForDrawable(window)
	c.Assert(err, qt.ErrorIs, ErrRecreateDeferred)
	c.Assert(window.waits, qt.Equals, 2)
}
