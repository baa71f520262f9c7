// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// CommandRecorder owns the command pool and one primary buffer per frame slot.
type CommandRecorder struct {
	logger log.FieldLogger
	device vk.Device

	commandPool    vk.CommandPool
	commandBuffers []vk.CommandBuffer
	clearColor     mgl32.Vec4
}

// NewCommandRecorder creates a pool on the graphics family whose buffers can
// be reset one by one, and allocates frames buffers from it.
func NewCommandRecorder(dev vk.Device, graphicsFamily, frames uint32, clearColor mgl32.Vec4, logger log.FieldLogger) (*CommandRecorder, error) {
	c := &CommandRecorder{
		logger:     orDiscard(logger),
		device:     dev,
		clearColor: clearColor,
	}

	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: graphicsFamily,
	}

	var commandPool vk.CommandPool
	if err := vkError(c.logger, "vk.CreateCommandPool()", vk.CreateCommandPool(dev, &cpci, nil, &commandPool)); err != nil {
		return nil, err
	}
	c.commandPool = commandPool

	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: frames,
	}

	commandBuffers := make([]vk.CommandBuffer, frames)
	if err := vkError(c.logger, "vk.AllocateCommandBuffers()", vk.AllocateCommandBuffers(dev, &cbai, commandBuffers)); err != nil {
		c.Destroy()
		return nil, err
	}
	c.commandBuffers = commandBuffers
	return c, nil
}

// Reset clears the slot's buffer for recording.
func (c *CommandRecorder) Reset(slot uint32) error {
	return vkError(c.logger, "vk.ResetCommandBuffer()", vk.ResetCommandBuffer(c.commandBuffers[slot], 0))
}

// Record fills the slot's buffer with a render pass over framebuffer that
// draws the triangle.
func (c *CommandRecorder) Record(slot uint32, renderPass vk.RenderPass, framebuffer vk.Framebuffer, pipeline vk.Pipeline, extent vk.Extent2D) error {
	commandBuffer := c.commandBuffers[slot]

	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if ret := vk.BeginCommandBuffer(commandBuffer, &cbbi); ret != vk.Success {
		return errors.Wrapf(vkError(c.logger, "vk.BeginCommandBuffer()", ret), "slot %d", slot)
	}

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor(c.clearColor[:])

	rpbi := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	viewport, scissor := fullViewport(extent)

	vk.CmdBeginRenderPass(commandBuffer, &rpbi, vk.SubpassContentsInline)
	vk.CmdBindPipeline(commandBuffer, vk.PipelineBindPointGraphics, pipeline)
	vk.CmdSetViewport(commandBuffer, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer, 0, 1, []vk.Rect2D{scissor})
	vk.CmdDraw(commandBuffer, 3, 1, 0, 0)
	vk.CmdEndRenderPass(commandBuffer)

	if ret := vk.EndCommandBuffer(commandBuffer); ret != vk.Success {
		return errors.Wrapf(vkError(c.logger, "vk.EndCommandBuffer()", ret), "slot %d", slot)
	}
	return nil
}

// Buffer returns the slot's command buffer.
func (c *CommandRecorder) Buffer(slot uint32) vk.CommandBuffer {
	return c.commandBuffers[slot]
}

// Destroy frees the buffers and the pool.
func (c *CommandRecorder) Destroy() {
	if c == nil || c.commandPool == vk.NullCommandPool {
		return
	}
	if len(c.commandBuffers) > 0 {
		vk.FreeCommandBuffers(c.device, c.commandPool, uint32(len(c.commandBuffers)), c.commandBuffers)
		c.commandBuffers = nil
	}
	vk.DestroyCommandPool(c.device, c.commandPool, nil)
	c.commandPool = vk.NullCommandPool
}

// fullViewport covers the whole extent with depth range 0 to 1.
func fullViewport(extent vk.Extent2D) (vk.Viewport, vk.Rect2D) {
	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	return viewport, scissor
}
