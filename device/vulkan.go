// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Enumerate returns the physical devices of the instance.
func Enumerate(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var deviceCount uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	availableDevices := make([]vk.PhysicalDevice, deviceCount)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &deviceCount, availableDevices)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	return availableDevices[:deviceCount], nil
}

// Candidates probes every physical device of the instance against surface.
func Candidates(instance vk.Instance, surface vk.Surface) ([]Candidate, error) {
	physicalDevices, err := Enumerate(instance)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(physicalDevices))
	for _, pd := range physicalDevices {
		candidates = append(candidates, Probe(pd, surface))
	}
	return candidates, nil
}

// Probe gathers the attributes selection scores a device on.
func Probe(physicalDevice vk.PhysicalDevice, surface vk.Surface) Candidate {
	info := Describe(physicalDevice)

	c := NewCandidate(physicalDevice, info, ProbeQueueFamilies(physicalDevice, surface))

	var formatCount uint32
	if vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil) == vk.Success {
		c.SurfaceFormats = int(formatCount)
	}
	var modeCount uint32
	if vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &modeCount, nil) == vk.Success {
		c.PresentModes = int(modeCount)
	}
	return c
}

// ProbeQueueFamilies finds the graphics and present families of a device.
func ProbeQueueFamilies(physicalDevice vk.PhysicalDevice, surface vk.Surface) QueueFamilies {
	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(physicalDevice, &queueFamilyCount, queueFamilies)

	graphics := func(i uint32) bool {
		queueFamilies[i].Deref()
		return queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
	}
	present := func(i uint32) bool {
		var supportsPresent vk.Bool32
		if vk.GetPhysicalDeviceSurfaceSupport(physicalDevice, i, surface, &supportsPresent) != vk.Success {
			return false
		}
		return supportsPresent.B()
	}
	return FindQueueFamilies(queueFamilyCount, graphics, present)
}

// Describe collects the general info of a physical device. Failing
// queries mark the info Invalid instead of aborting.
func Describe(physicalDevice vk.PhysicalDevice) PhysicalDeviceInfo {
	var pdi PhysicalDeviceInfo

	var numDeviceExtensions uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &numDeviceExtensions, nil)); err != nil {
		pdi.Invalid = true
	}
	deviceExt := make([]vk.ExtensionProperties, numDeviceExtensions)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(physicalDevice, "", &numDeviceExtensions, deviceExt)); err != nil {
		pdi.Invalid = true
	}
	for _, ext := range deviceExt {
		ext.Deref()
		pdi.Extensions = append(pdi.Extensions, vk.ToString(ext.ExtensionName[:]))
	}

	var numDeviceLayers uint32
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(physicalDevice, &numDeviceLayers, nil)); err != nil {
		pdi.Invalid = true
	}
	deviceLayers := make([]vk.LayerProperties, numDeviceLayers)
	if err := vk.Error(vk.EnumerateDeviceLayerProperties(physicalDevice, &numDeviceLayers, deviceLayers)); err != nil {
		pdi.Invalid = true
	}
	for _, layer := range deviceLayers {
		layer.Deref()
		pdi.Layers = append(pdi.Layers, vk.ToString(layer.LayerName[:]))
	}

	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physicalDevice, &memoryProperties)
	memoryProperties.Deref()
	for iMem := uint32(0); iMem < memoryProperties.MemoryHeapCount; iMem++ {
		memoryProperties.MemoryHeaps[iMem].Deref()
		pdi.Memory += memoryProperties.MemoryHeaps[iMem].Size
	}

	var physicalDeviceProperties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(physicalDevice, &physicalDeviceProperties)
	physicalDeviceProperties.Deref()
	physicalDeviceProperties.Limits.Deref()
	pdi.ID = int(physicalDeviceProperties.DeviceID)
	pdi.VendorID = int(physicalDeviceProperties.VendorID)
	pdi.Name = vk.ToString(physicalDeviceProperties.DeviceName[:])
	pdi.DriverVersion = int(physicalDeviceProperties.DriverVersion)
	pdi.DeviceType = physicalDeviceProperties.DeviceType
	pdi.MaxImageDimension2D = physicalDeviceProperties.Limits.MaxImageDimension2D
	return pdi
}
