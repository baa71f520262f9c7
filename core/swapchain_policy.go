// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/trigon/device"
)

// SurfaceSupport is what the surface reports for a physical device.
type SurfaceSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// SwapchainPlan holds every decision that goes into a swapchain create info.
type SwapchainPlan struct {
	Format       vk.Format
	ColorSpace   vk.ColorSpace
	PresentMode  vk.PresentMode
	Width        uint32
	Height       uint32
	ImageCount   uint32
	PreTransform vk.SurfaceTransformFlagBits
	SharingMode  vk.SharingMode
	Families     []uint32
}

// Extent returns the planned image extent.
func (p SwapchainPlan) Extent() vk.Extent2D {
	return vk.Extent2D{Width: p.Width, Height: p.Height}
}

// planSwapchain decides the swapchain parameters. The same inputs
// always produce the same plan.
func planSwapchain(support SurfaceSupport, width, height uint32, families device.QueueFamilies) (SwapchainPlan, error) {
	if len(support.Formats) == 0 {
		return SwapchainPlan{}, errors.New("surface reports no formats")
	}
	if len(support.PresentModes) == 0 {
		return SwapchainPlan{}, errors.New("surface reports no present modes")
	}

	caps := support.Capabilities
	format := chooseSurfaceFormat(support.Formats)
	extent := chooseExtent(caps, width, height)

	plan := SwapchainPlan{
		Format:       format.Format,
		ColorSpace:   format.ColorSpace,
		PresentMode:  choosePresentMode(support.PresentModes),
		Width:        extent.Width,
		Height:       extent.Height,
		ImageCount:   chooseImageCount(caps.MinImageCount, caps.MaxImageCount),
		PreTransform: caps.CurrentTransform,
		SharingMode:  vk.SharingModeExclusive,
	}
	if !families.Shared() {
		plan.SharingMode = vk.SharingModeConcurrent
		plan.Families = []uint32{families.Graphics, families.Present}
	}
	return plan, nil
}

// chooseSurfaceFormat prefers 8 bit BGRA sRGB, otherwise takes what comes first.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

// choosePresentMode takes mailbox when offered, FIFO is always there.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's extent unless it leaves the choice to us.
func chooseExtent(caps vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return vk.Extent2D{
			Width:  caps.CurrentExtent.Width,
			Height: caps.CurrentExtent.Height,
		}
	}
	return vk.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one more than the minimum, max 0 means unbounded.
func chooseImageCount(min, max uint32) uint32 {
	count := min + 1
	if max > 0 && count > max {
		count = max
	}
	return count
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// waitForDrawable blocks on window events while the drawable area is empty.
// A close request while waiting returns ErrRecreateDeferred.
func waitForDrawable(window Window) (width, height uint32, err error) {
	width, height = window.DrawableSize()
	for width == 0 || height == 0 {
		if window.ShouldClose() {
			return 0, 0, ErrRecreateDeferred
		}
		window.WaitEvents()
		width, height = window.DrawableSize()
	}
	return width, height, nil
}
