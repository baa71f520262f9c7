// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device scores physical devices and picks the one to render with.
package device

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ErrNoSuitableDevice is returned by Select when every candidate is disqualified.
var ErrNoSuitableDevice = errors.New("device: no suitable physical device")

// DiscreteBonus is added to the score of discrete GPUs.
const DiscreteBonus = 1000

// RequiredExtensions must be supported for a device to score above zero.
var RequiredExtensions = []string{
	vk.KhrSwapchainExtensionName,
}

// OptionalExtensions are enabled on the logical device when available.
var OptionalExtensions = []string{
	"VK_KHR_portability_subset",
	SwapchainMaintenanceExtensionName,
}

// SwapchainMaintenanceExtensionName enables the present fence.
const SwapchainMaintenanceExtensionName = "VK_EXT_swapchain_maintenance1"

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            int
	VendorID      int
	DriverVersion int
	Name          string
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        vk.DeviceSize

	DeviceType          vk.PhysicalDeviceType
	MaxImageDimension2D uint32
}

// HasExtension reports whether the device lists the extension.
func (p PhysicalDeviceInfo) HasExtension(name string) bool {
	for _, ext := range p.Extensions {
		if ext == name {
			return true
		}
	}
	return false
}

// QueueFamilies holds the family indices found during a queue scan.
type QueueFamilies struct {
	Graphics    uint32
	Present     uint32
	HasGraphics bool
	HasPresent  bool
}

// Complete is true once both a graphics and a present family are known.
func (q QueueFamilies) Complete() bool {
	return q.HasGraphics && q.HasPresent
}

// Shared is true when graphics and presentation use the same family.
func (q QueueFamilies) Shared() bool {
	return q.Graphics == q.Present
}

// Distinct returns the family indices that need a queue, one entry
// if graphics and present coincide, two otherwise.
func (q QueueFamilies) Distinct() []uint32 {
	if q.Shared() {
		return []uint32{q.Graphics}
	}
	return []uint32{q.Graphics, q.Present}
}

// FindQueueFamilies scans count families once, recording the first family
// that supports graphics and the first that can present. The scan stops as
// soon as both are known, and present support is only probed until found.
func FindQueueFamilies(count uint32, graphics, present func(uint32) bool) QueueFamilies {
	var q QueueFamilies
	for i := uint32(0); i < count; i++ {
		if !q.HasGraphics && graphics(i) {
			q.Graphics = i
			q.HasGraphics = true
		}
		if !q.HasPresent && present(i) {
			q.Present = i
			q.HasPresent = true
		}
		if q.Complete() {
			break
		}
	}
	return q
}

// Candidate is everything selection needs to know about a physical device.
type Candidate struct {
	Handle vk.PhysicalDevice `json:"-"`
	Info   PhysicalDeviceInfo

	Discrete            bool
	MaxImageDimension2D uint32
	MissingExtensions   []string
	Families            QueueFamilies
	SurfaceFormats      int
	PresentModes        int
}

// NewCandidate derives the scored attributes from a device description.
// Surface format and present mode counts are left for the caller.
func NewCandidate(handle vk.PhysicalDevice, info PhysicalDeviceInfo, families QueueFamilies) Candidate {
	return Candidate{
		Handle:              handle,
		Info:                info,
		Discrete:            info.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu,
		MaxImageDimension2D: info.MaxImageDimension2D,
		MissingExtensions:   MissingExtensions(info.Extensions, RequiredExtensions),
		Families:            families,
	}
}

// Disqualifications lists the reasons a candidate cannot be used.
// An empty result means the candidate is usable.
func (c Candidate) Disqualifications() []string {
	var reasons []string
	for _, ext := range c.MissingExtensions {
		reasons = append(reasons, "missing extension "+ext)
	}
	if !c.Families.HasGraphics {
		reasons = append(reasons, "no graphics queue family")
	}
	if !c.Families.HasPresent {
		reasons = append(reasons, "no present queue family")
	}
	if c.SurfaceFormats == 0 {
		reasons = append(reasons, "no surface formats")
	}
	if c.PresentModes == 0 {
		reasons = append(reasons, "no present modes")
	}
	return reasons
}

// Score rates a candidate, zero meaning disqualified.
func Score(c Candidate) uint64 {
	if len(c.Disqualifications()) > 0 {
		return 0
	}
	var score uint64
	if c.Discrete {
		score += DiscreteBonus
	}
	return score + uint64(c.MaxImageDimension2D)
}

// Select returns the highest scoring candidate. Ties keep the earlier one.
func Select(candidates []Candidate) (Candidate, error) {
	var (
		best      Candidate
		bestScore uint64
	)
	for _, c := range candidates {
		if s := Score(c); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore == 0 {
		return Candidate{}, ErrNoSuitableDevice
	}
	return best, nil
}

// MissingExtensions returns the names in required that available lacks.
func MissingExtensions(available, required []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, a := range available {
		have[a] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := have[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}
