// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// VulkanSwapchain is the chain of presentable images and their views.
type VulkanSwapchain struct {
	logger log.FieldLogger
	device *VulkanDevice
	window Window

	surface   vk.Surface
	swapchain vk.Swapchain
	images    []vk.Image
	views     []vk.ImageView
	plan      SwapchainPlan
}

// NewVulkanSwapchain creates a swapchain for surface sized to the window.
func NewVulkanSwapchain(dev *VulkanDevice, surface vk.Surface, window Window, logger log.FieldLogger) (*VulkanSwapchain, error) {
	s := &VulkanSwapchain{
		logger:  orDiscard(logger),
		device:  dev,
		window:  window,
		surface: surface,
	}

	width, height, err := waitForDrawable(window)
	if err != nil {
		return nil, err
	}
	if err := s.build(vk.NullSwapchain, width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Recreate builds a new chain for the current drawable size, handing the old
// one over as a hint. The old chain and views are destroyed only after the
// new chain exists. While the window is minimized it blocks on events.
func (s *VulkanSwapchain) Recreate() error {
	width, height, err := waitForDrawable(s.window)
	if err != nil {
		return err
	}
	if err := s.device.WaitIdle(); err != nil {
		return err
	}

	oldSwapchain, oldViews := s.swapchain, s.views
	if err := s.build(oldSwapchain, width, height); err != nil {
		return err
	}
	s.destroyViews(oldViews)
	vk.DestroySwapchain(s.device.Device(), oldSwapchain, nil)
	return nil
}

// build creates the chain and views and swaps them in on success only.
func (s *VulkanSwapchain) build(oldSwapchain vk.Swapchain, width, height uint32) error {
	support, err := querySurfaceSupport(s.device.PhysicalDevice(), s.surface, s.logger)
	if err != nil {
		return err
	}
	plan, err := planSwapchain(support, width, height, s.device.Families())
	if err != nil {
		return err
	}

	scci := vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               s.surface,
		MinImageCount:         plan.ImageCount,
		ImageFormat:           plan.Format,
		ImageColorSpace:       plan.ColorSpace,
		ImageExtent:           plan.Extent(),
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      plan.SharingMode,
		QueueFamilyIndexCount: uint32(len(plan.Families)),
		PQueueFamilyIndices:   plan.Families,
		PreTransform:          plan.PreTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           plan.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          oldSwapchain,
	}

	dev := s.device.Device()
	var swapchain vk.Swapchain
	if err := vkError(s.logger, "vk.CreateSwapchain()", vk.CreateSwapchain(dev, &scci, nil, &swapchain)); err != nil {
		return err
	}

	var numImages uint32
	if err := vkError(s.logger, "vk.GetSwapchainImages()", vk.GetSwapchainImages(dev, swapchain, &numImages, nil)); err != nil {
		vk.DestroySwapchain(dev, swapchain, nil)
		return err
	}
	images := make([]vk.Image, numImages)
	if err := vkError(s.logger, "vk.GetSwapchainImages()", vk.GetSwapchainImages(dev, swapchain, &numImages, images)); err != nil {
		vk.DestroySwapchain(dev, swapchain, nil)
		return err
	}
	images = images[:numImages]

	views := make([]vk.ImageView, 0, len(images))
	for idx, image := range images {
		ivci := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   plan.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		var view vk.ImageView
		if ret := vk.CreateImageView(dev, &ivci, nil, &view); ret != vk.Success {
			s.destroyViews(views)
			vk.DestroySwapchain(dev, swapchain, nil)
			return errors.Wrapf(vkError(s.logger, "vk.CreateImageView()", ret), "image %d", idx)
		}
		views = append(views, view)
	}

	s.swapchain = swapchain
	s.images = images
	s.views = views
	s.plan = plan

	s.logger.WithFields(log.Fields{
		"extent": [2]uint32{plan.Width, plan.Height},
		"format": plan.Format,
		"mode":   plan.PresentMode,
		"images": len(images),
	}).Debug("swapchain created")
	return nil
}

// Handle returns the internal vk.Swapchain
func (s *VulkanSwapchain) Handle() vk.Swapchain {
	return s.swapchain
}

// Format is the color format of the images.
func (s *VulkanSwapchain) Format() vk.Format {
	return s.plan.Format
}

// Extent is the size of the images.
func (s *VulkanSwapchain) Extent() vk.Extent2D {
	return s.plan.Extent()
}

// Views returns one view per swapchain image.
func (s *VulkanSwapchain) Views() []vk.ImageView {
	return s.views
}

func (s *VulkanSwapchain) destroyViews(views []vk.ImageView) {
	for _, view := range views {
		vk.DestroyImageView(s.device.Device(), view, nil)
	}
}

// Destroy destroys the views and the chain. Images belong to the chain.
func (s *VulkanSwapchain) Destroy() {
	if s == nil || s.swapchain == vk.NullSwapchain {
		return
	}
	s.destroyViews(s.views)
	vk.DestroySwapchain(s.device.Device(), s.swapchain, nil)
	s.views = nil
	s.images = nil
	s.swapchain = vk.NullSwapchain
}

func querySurfaceSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, logger log.FieldLogger) (SurfaceSupport, error) {
	var support SurfaceSupport

	var caps vk.SurfaceCapabilities
	if err := vkError(logger, "vk.GetPhysicalDeviceSurfaceCapabilities()",
		vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &caps)); err != nil {
		return support, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	support.Capabilities = caps

	var formatCount uint32
	if err := vkError(logger, "vk.GetPhysicalDeviceSurfaceFormats()",
		vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil)); err != nil {
		return support, err
	}
	formats := make([]vk.SurfaceFormat, formatCount)
	if err := vkError(logger, "vk.GetPhysicalDeviceSurfaceFormats()",
		vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, formats)); err != nil {
		return support, err
	}
	for idx := range formats[:formatCount] {
		formats[idx].Deref()
	}
	support.Formats = formats[:formatCount]

	var modeCount uint32
	if err := vkError(logger, "vk.GetPhysicalDeviceSurfacePresentModes()",
		vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, nil)); err != nil {
		return support, err
	}
	modes := make([]vk.PresentMode, modeCount)
	if err := vkError(logger, "vk.GetPhysicalDeviceSurfacePresentModes()",
		vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, modes)); err != nil {
		return support, err
	}
	support.PresentModes = modes[:modeCount]
	return support, nil
}
