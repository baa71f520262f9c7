// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/trigon/device"
)

// VulkanDevice is the logical device created on the selected candidate.
type VulkanDevice struct {
	logger log.FieldLogger

	physicalDevice vk.PhysicalDevice
	device         vk.Device
	families       device.QueueFamilies
	graphicsQueue  vk.Queue
	presentQueue   vk.Queue

	extensions    []string
	presentFences bool
}

// NewVulkanDevice creates the logical device with one queue per distinct
// family. swapchainMaintenance is whether the instance enabled the surface
// extensions the present fence depends on.
func NewVulkanDevice(candidate device.Candidate, swapchainMaintenance bool, logger log.FieldLogger) (*VulkanDevice, error) {
	logger = orDiscard(logger)

	if !candidate.Families.Complete() {
		return nil, errors.New("candidate has no graphics or present family")
	}

	priorities := []float32{1.0}
	var queueInfos []vk.DeviceQueueCreateInfo
	for _, family := range candidate.Families.Distinct() {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: priorities,
		})
	}

	extensions := append([]string(nil), device.RequiredExtensions...)
	presentFences := false
	for _, ext := range device.OptionalExtensions {
		if !candidate.Info.HasExtension(ext) {
			continue
		}
		if ext == device.SwapchainMaintenanceExtensionName {
			if !swapchainMaintenance {
				continue
			}
			presentFences = true
		}
		extensions = append(extensions, ext)
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}

	if presentFences {
		features := newSwapchainMaintenanceFeatures()
		defer features.free()
		dci.PNext = features.pointer()
	}

	var vkDevice vk.Device
	if err := vkError(logger, "vk.CreateDevice()", vk.CreateDevice(candidate.Handle, &dci, nil, &vkDevice)); err != nil {
		return nil, err
	}

	var graphicsQueue, presentQueue vk.Queue
	vk.GetDeviceQueue(vkDevice, candidate.Families.Graphics, 0, &graphicsQueue)
	vk.GetDeviceQueue(vkDevice, candidate.Families.Present, 0, &presentQueue)

	logger.WithFields(log.Fields{
		"device":         candidate.Info.Name,
		"graphics":       candidate.Families.Graphics,
		"present":        candidate.Families.Present,
		"extensions":     extensions,
		"present_fences": presentFences,
	}).Info("logical device created")

	return &VulkanDevice{
		logger:         logger,
		physicalDevice: candidate.Handle,
		device:         vkDevice,
		families:       candidate.Families,
		graphicsQueue:  graphicsQueue,
		presentQueue:   presentQueue,
		extensions:     extensions,
		presentFences:  presentFences,
	}, nil
}

// Device returns the internal vk.Device
func (d *VulkanDevice) Device() vk.Device {
	return d.device
}

// PhysicalDevice returns the device it was created on.
func (d *VulkanDevice) PhysicalDevice() vk.PhysicalDevice {
	return d.physicalDevice
}

// Families returns the graphics and present family indices.
func (d *VulkanDevice) Families() device.QueueFamilies {
	return d.families
}

// GraphicsQueue is the queue submissions go to.
func (d *VulkanDevice) GraphicsQueue() vk.Queue {
	return d.graphicsQueue
}

// PresentQueue is the queue presents go to, may equal GraphicsQueue.
func (d *VulkanDevice) PresentQueue() vk.Queue {
	return d.presentQueue
}

// PresentFences reports whether presents can signal a fence.
func (d *VulkanDevice) PresentFences() bool {
	return d.presentFences
}

// WaitIdle blocks until the device has no pending work.
func (d *VulkanDevice) WaitIdle() error {
	return vkError(d.logger, "vk.DeviceWaitIdle()", vk.DeviceWaitIdle(d.device))
}

// Destroy destroys the logical device, everything created on it must be gone.
func (d *VulkanDevice) Destroy() {
	if d == nil || d.device == nil {
		return
	}
	vk.DestroyDevice(d.device, nil)
	d.device = nil
	d.graphicsQueue = nil
	d.presentQueue = nil
}
