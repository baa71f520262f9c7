// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// frameStages are the steps of one frame for a slot.
type frameStages interface {
	// waitSlot blocks until the slot's previous frame is done with its resources
	waitSlot(slot uint32) error
	// acquire takes the next swapchain image
	acquire(slot uint32) (image uint32, ret vk.Result)
	// resetSlot unsignals the slot's fences
	resetSlot(slot uint32) error
	// record resets and records the slot's command buffer for image
	record(slot, image uint32) error
	// submit queues the slot's command buffer
	submit(slot uint32) error
	// present queues image for presentation
	present(slot, image uint32) vk.Result
}

// frameLoop drives frames through the stages, cycling over frames slots.
type frameLoop struct {
	logger  log.FieldLogger
	stages  frameStages
	frames  uint32
	current uint32
}

func newFrameLoop(stages frameStages, frames uint32, logger log.FieldLogger) *frameLoop {
	return &frameLoop{
		logger: orDiscard(logger),
		stages: stages,
		frames: frames,
	}
}

// advance moves to the next slot.
func (l *frameLoop) advance() {
	l.current = (l.current + 1) % l.frames
}

// draw runs one frame. Fences are reset only after an image was acquired,
// an out of date acquire leaves the slot untouched and the counter where it was.
func (l *frameLoop) draw() (DrawResult, error) {
	l.current %= l.frames
	slot := l.current

	if err := l.stages.waitSlot(slot); err != nil {
		return DrawError, errors.Wrapf(err, "wait slot %d", slot)
	}

	image, ret := l.stages.acquire(slot)
	switch ret {
	case vk.Success, vk.Suboptimal:
	case vk.ErrorOutOfDate:
		l.logger.WithField("slot", slot).Debug("acquire out of date")
		return DrawNeedRecreate, nil
	default:
		return DrawError, vkError(l.logger, "vk.AcquireNextImage()", ret)
	}

	if err := l.stages.resetSlot(slot); err != nil {
		return DrawError, errors.Wrapf(err, "reset slot %d", slot)
	}
	if err := l.stages.record(slot, image); err != nil {
		return DrawError, errors.Wrapf(err, "record slot %d image %d", slot, image)
	}
	if err := l.stages.submit(slot); err != nil {
		return DrawError, errors.Wrapf(err, "submit slot %d", slot)
	}

	switch ret := l.stages.present(slot, image); ret {
	case vk.Success:
	case vk.ErrorOutOfDate, vk.Suboptimal:
		l.advance()
		l.logger.WithFields(log.Fields{
			"slot":   slot,
			"result": resultString(ret),
		}).Debug("present stale")
		return DrawNeedRecreate, nil
	default:
		return DrawError, vkError(l.logger, "vk.QueuePresent()", ret)
	}

	l.advance()
	return DrawOk, nil
}

// vulkanFrame runs the stages against the renderer's current objects.
type vulkanFrame struct {
	r         *VulkanRenderer
	fenceInfo *presentFenceInfo
}

func (f *vulkanFrame) waitSlot(slot uint32) error {
	return f.r.sync.Wait(slot, f.r.device.PresentFences())
}

func (f *vulkanFrame) acquire(slot uint32) (uint32, vk.Result) {
	var image uint32
	ret := vk.AcquireNextImage(f.r.device.Device(), f.r.swapchain.Handle(), math.MaxUint64,
		f.r.sync.ImageAvailable(slot), vk.NullFence, &image)
	return image, ret
}

func (f *vulkanFrame) resetSlot(slot uint32) error {
	return f.r.sync.Reset(slot, f.r.device.PresentFences())
}

func (f *vulkanFrame) record(slot, image uint32) error {
	if int(image) >= f.r.targets.Len() {
		return errors.Errorf("no framebuffer for image %d of %d", image, f.r.targets.Len())
	}
	if err := f.r.commands.Reset(slot); err != nil {
		return err
	}
	return f.r.commands.Record(slot,
		f.r.targets.RenderPass(),
		f.r.targets.Framebuffer(image),
		f.r.pipeline.Handle(),
		f.r.swapchain.Extent())
}

func (f *vulkanFrame) submit(slot uint32) error {
	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.r.sync.ImageAvailable(slot)},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{f.r.commands.Buffer(slot)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{f.r.sync.RenderFinished(slot)},
	}}
	return vkError(f.r.logger, "vk.QueueSubmit()",
		vk.QueueSubmit(f.r.device.GraphicsQueue(), 1, submit, f.r.sync.InFlight(slot)))
}

func (f *vulkanFrame) present(slot, image uint32) vk.Result {
	pi := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{f.r.sync.RenderFinished(slot)},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{f.r.swapchain.Handle()},
		PImageIndices:      []uint32{image},
	}
	if f.r.device.PresentFences() {
		pi.PNext = f.fenceInfo.chain(f.r.sync.PresentDone(slot))
	}
	return vk.QueuePresent(f.r.device.PresentQueue(), &pi)
}
