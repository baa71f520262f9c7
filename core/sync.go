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

// FrameSync holds per slot semaphores and fences.
type FrameSync struct {
	logger log.FieldLogger
	device vk.Device

	imageAvailable []vk.Semaphore
	renderFinished []vk.Semaphore
	inFlight       []vk.Fence
	presentDone    []vk.Fence
}

// NewFrameSync creates the primitives for frames slots. Fences start
// signaled so the first wait on every slot returns at once.
func NewFrameSync(dev vk.Device, frames uint32, logger log.FieldLogger) (*FrameSync, error) {
	s := &FrameSync{
		logger:         orDiscard(logger),
		device:         dev,
		imageAvailable: make([]vk.Semaphore, 0, frames),
		renderFinished: make([]vk.Semaphore, 0, frames),
		inFlight:       make([]vk.Fence, 0, frames),
		presentDone:    make([]vk.Fence, 0, frames),
	}

	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	fci := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}

	for slot := uint32(0); slot < frames; slot++ {
		var imageAvailable, renderFinished vk.Semaphore
		var inFlight, presentDone vk.Fence

		if err := vkError(s.logger, "vk.CreateSemaphore()", vk.CreateSemaphore(dev, &sci, nil, &imageAvailable)); err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "slot %d", slot)
		}
		s.imageAvailable = append(s.imageAvailable, imageAvailable)

		if err := vkError(s.logger, "vk.CreateSemaphore()", vk.CreateSemaphore(dev, &sci, nil, &renderFinished)); err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "slot %d", slot)
		}
		s.renderFinished = append(s.renderFinished, renderFinished)

		if err := vkError(s.logger, "vk.CreateFence()", vk.CreateFence(dev, &fci, nil, &inFlight)); err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "slot %d", slot)
		}
		s.inFlight = append(s.inFlight, inFlight)

		if err := vkError(s.logger, "vk.CreateFence()", vk.CreateFence(dev, &fci, nil, &presentDone)); err != nil {
			s.Destroy()
			return nil, errors.Wrapf(err, "slot %d", slot)
		}
		s.presentDone = append(s.presentDone, presentDone)
	}
	return s, nil
}

// Frames is the number of slots.
func (s *FrameSync) Frames() uint32 {
	return uint32(len(s.inFlight))
}

// Wait blocks until the slot's fences are signaled. The present fence is
// only waited on when presents signal it.
func (s *FrameSync) Wait(slot uint32, presentFences bool) error {
	fences := []vk.Fence{s.inFlight[slot]}
	if presentFences {
		fences = append(fences, s.presentDone[slot])
	}
	return vkError(s.logger, "vk.WaitForFences()",
		vk.WaitForFences(s.device, uint32(len(fences)), fences, vk.True, math.MaxUint64))
}

// Reset unsignals the slot's fences before they are handed to the queue.
func (s *FrameSync) Reset(slot uint32, presentFences bool) error {
	fences := []vk.Fence{s.inFlight[slot]}
	if presentFences {
		fences = append(fences, s.presentDone[slot])
	}
	return vkError(s.logger, "vk.ResetFences()", vk.ResetFences(s.device, uint32(len(fences)), fences))
}

// ImageAvailable is signaled when the acquired image can be rendered to.
func (s *FrameSync) ImageAvailable(slot uint32) vk.Semaphore {
	return s.imageAvailable[slot]
}

// RenderFinished is signaled when the slot's submission completes.
func (s *FrameSync) RenderFinished(slot uint32) vk.Semaphore {
	return s.renderFinished[slot]
}

// InFlight is signaled when the slot's submission completes.
func (s *FrameSync) InFlight(slot uint32) vk.Fence {
	return s.inFlight[slot]
}

// PresentDone is signaled when the slot's present resources can be reused.
func (s *FrameSync) PresentDone(slot uint32) vk.Fence {
	return s.presentDone[slot]
}

// Destroy destroys every semaphore and fence. The device must be idle.
func (s *FrameSync) Destroy() {
	if s == nil {
		return
	}
	for _, semaphore := range s.imageAvailable {
		vk.DestroySemaphore(s.device, semaphore, nil)
	}
	for _, semaphore := range s.renderFinished {
		vk.DestroySemaphore(s.device, semaphore, nil)
	}
	for _, fence := range s.inFlight {
		vk.DestroyFence(s.device, fence, nil)
	}
	for _, fence := range s.presentDone {
		vk.DestroyFence(s.device, fence, nil)
	}
	s.imageAvailable = nil
	s.renderFinished = nil
	s.inFlight = nil
	s.presentDone = nil
}
