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

// RenderTargets is the render pass and one framebuffer per swapchain view.
type RenderTargets struct {
	logger log.FieldLogger
	device vk.Device

	renderPass   vk.RenderPass
	framebuffers []vk.Framebuffer
	format       vk.Format
}

// NewRenderTargets creates the render pass for the swapchain format and
// framebuffers for its views.
func NewRenderTargets(dev vk.Device, swapchain *VulkanSwapchain, logger log.FieldLogger) (*RenderTargets, error) {
	r := &RenderTargets{
		logger: orDiscard(logger),
		device: dev,
		format: swapchain.Format(),
	}
	if err := r.createRenderPass(); err != nil {
		return nil, err
	}
	if err := r.createFramebuffers(swapchain.Views(), swapchain.Extent()); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *RenderTargets) createRenderPass() error {
	attachments := []vk.AttachmentDescription{{
		Format:         r.format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	// Image layout transition waits for the acquire semaphore stage.
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var renderPass vk.RenderPass
	if err := vkError(r.logger, "vk.CreateRenderPass()", vk.CreateRenderPass(r.device, &rpci, nil, &renderPass)); err != nil {
		return err
	}
	r.renderPass = renderPass
	return nil
}

func (r *RenderTargets) createFramebuffers(views []vk.ImageView, extent vk.Extent2D) error {
	framebuffers := make([]vk.Framebuffer, 0, len(views))
	for idx, view := range views {
		fci := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      r.renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{view},
			Width:           extent.Width,
			Height:          extent.Height,
			Layers:          1,
		}

		var framebuffer vk.Framebuffer
		if ret := vk.CreateFramebuffer(r.device, &fci, nil, &framebuffer); ret != vk.Success {
			r.framebuffers = framebuffers
			return errors.Wrapf(vkError(r.logger, "vk.CreateFramebuffer()", ret), "view %d", idx)
		}
		framebuffers = append(framebuffers, framebuffer)
	}
	r.framebuffers = framebuffers
	return nil
}

// RebuildFramebuffers replaces the framebuffers for a recreated swapchain.
// The old ones are destroyed first either way. When the swapchain format
// changed the render pass is stale, ErrFormatMismatch is returned and the
// whole set has to be rebuilt.
func (r *RenderTargets) RebuildFramebuffers(swapchain *VulkanSwapchain) error {
	r.destroyFramebuffers()
	if swapchain.Format() != r.format {
		r.logger.WithFields(log.Fields{
			"format":    r.format,
			"swapchain": swapchain.Format(),
		}).Info("swapchain format changed")
		return ErrFormatMismatch
	}
	return r.createFramebuffers(swapchain.Views(), swapchain.Extent())
}

// RenderPass returns the internal vk.RenderPass
func (r *RenderTargets) RenderPass() vk.RenderPass {
	return r.renderPass
}

// Framebuffer returns the framebuffer of the swapchain image at index.
func (r *RenderTargets) Framebuffer(index uint32) vk.Framebuffer {
	return r.framebuffers[index]
}

// Len is the number of framebuffers.
func (r *RenderTargets) Len() int {
	return len(r.framebuffers)
}

// Format is the color format the render pass was built for.
func (r *RenderTargets) Format() vk.Format {
	return r.format
}

func (r *RenderTargets) destroyFramebuffers() {
	for _, framebuffer := range r.framebuffers {
		vk.DestroyFramebuffer(r.device, framebuffer, nil)
	}
	r.framebuffers = nil
}

// Destroy destroys the framebuffers and the render pass.
func (r *RenderTargets) Destroy() {
	if r == nil {
		return
	}
	r.destroyFramebuffers()
	if r.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(r.device, r.renderPass, nil)
		r.renderPass = vk.NullRenderPass
	}
}
