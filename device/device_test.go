// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/trigon/device"
)

func usable(name string, discrete bool, maxDim uint32) device.Candidate {
	return device.Candidate{
		Info:                device.PhysicalDeviceInfo{Name: name},
		Discrete:            discrete,
		MaxImageDimension2D: maxDim,
		Families: device.QueueFamilies{
			HasGraphics: true,
			HasPresent:  true,
		},
		SurfaceFormats: 2,
		PresentModes:   1,
	}
}

func TestScore(t *testing.T) {
	c := qt.New(t)

	c.Assert(device.Score(usable("igpu", false, 8192)), qt.Equals, uint64(8192))
	c.Assert(device.Score(usable("dgpu", true, 16384)), qt.Equals, uint64(17384))

	disqualify := map[string]func(*device.Candidate){
		"missing extension": func(d *device.Candidate) { d.MissingExtensions = []string{"VK_KHR_swapchain"} },
		"no graphics":       func(d *device.Candidate) { d.Families.HasGraphics = false },
		"no present":        func(d *device.Candidate) { d.Families.HasPresent = false },
		"no formats":        func(d *device.Candidate) { d.SurfaceFormats = 0 },
		"no present modes":  func(d *device.Candidate) { d.PresentModes = 0 },
	}
	for name, mutate := range disqualify {
		c.Run(name, func(c *qt.C) {
			d := usable("dgpu", true, 16384)
			mutate(&d)
			c.Assert(device.Score(d), qt.Equals, uint64(0))
			c.Assert(d.Disqualifications(), qt.HasLen, 1)
		})
	}
}

func TestSelectHighestScore(t *testing.T) {
	c := qt.New(t)

	broken := usable("broken", true, 32768)
	broken.PresentModes = 0

	picked, err := device.Select([]device.Candidate{
		usable("igpu", false, 16384),
		broken,
		usable("dgpu", true, 8192),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(picked.Info.Name, qt.Equals, "igpu")

	picked, err = device.Select([]device.Candidate{
		usable("igpu", false, 4096),
		usable("dgpu", true, 8192),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(picked.Info.Name, qt.Equals, "dgpu")
}

func TestSelectTieKeepsFirst(t *testing.T) {
	c := qt.New(t)

	picked, err := device.Select([]device.Candidate{
		usable("first", true, 8192),
		usable("second", true, 8192),
	})
	c.Assert(err, qt.IsNil)
	c.Assert(picked.Info.Name, qt.Equals, "first")
}

func TestSelectAllDisqualified(t *testing.T) {
	c := qt.New(t)

	a := usable("a", true, 8192)
	a.MissingExtensions = []string{"VK_KHR_swapchain"}
	b := usable("b", false, 4096)
	b.SurfaceFormats = 0

	_, err := device.Select([]device.Candidate{a, b})
	c.Assert(err, qt.ErrorIs, device.ErrNoSuitableDevice)

	_, err = device.Select(nil)
	c.Assert(err, qt.ErrorIs, device.ErrNoSuitableDevice)
}

func TestFindQueueFamilies(t *testing.T) {
	c := qt.New(t)

	type family struct{ graphics, present bool }
	tests := []struct {
		name     string
		families []family
		want     device.QueueFamilies
		probed   int
	}{{
		name:     "shared",
		families: []family{{true, true}, {true, true}},
		want:     device.QueueFamilies{Graphics: 0, Present: 0, HasGraphics: true, HasPresent: true},
		probed:   1,
	}, {
		name:     "separate",
		families: []family{{false, false}, {true, false}, {false, true}, {true, true}},
		want:     device.QueueFamilies{Graphics: 1, Present: 2, HasGraphics: true, HasPresent: true},
		probed:   2,
	}, {
		name:     "present first",
		families: []family{{false, true}, {true, false}},
		want:     device.QueueFamilies{Graphics: 1, Present: 0, HasGraphics: true, HasPresent: true},
		probed:   2,
	}, {
		name:     "no present",
		families: []family{{true, false}, {true, false}},
		want:     device.QueueFamilies{Graphics: 0, HasGraphics: true},
		probed:   1,
	}}

	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			probed := 0
			got := device.FindQueueFamilies(uint32(len(test.families)),
				func(i uint32) bool {
					probed++
					return test.families[i].graphics
				},
				func(i uint32) bool { return test.families[i].present })
			c.Assert(got, qt.Equals, test.want)
			c.Assert(probed, qt.Equals, test.probed)
		})
	}
}

func TestDistinctFamilies(t *testing.T) {
	c := qt.New(t)

	c.Assert(device.QueueFamilies{Graphics: 2, Present: 2}.Distinct(), qt.DeepEquals, []uint32{2})
	c.Assert(device.QueueFamilies{Graphics: 0, Present: 1}.Distinct(), qt.DeepEquals, []uint32{0, 1})
}

func TestMissingExtensions(t *testing.T) {
	c := qt.New(t)

	available := []string{"VK_KHR_swapchain", "VK_KHR_maintenance1"}
	c.Assert(device.MissingExtensions(available, device.RequiredExtensions), qt.HasLen, 0)
	c.Assert(device.MissingExtensions(available[1:], device.RequiredExtensions), qt.DeepEquals, []string{"VK_KHR_swapchain"})
}

func TestNewCandidate(t *testing.T) {
	c := qt.New(t)

	families := device.QueueFamilies{HasGraphics: true, HasPresent: true}
	dgpu := device.NewCandidate(nil, device.PhysicalDeviceInfo{
		Name:                "dgpu",
		Extensions:          []string{"VK_KHR_swapchain"},
		DeviceType:          vk.PhysicalDeviceTypeDiscreteGpu,
		MaxImageDimension2D: 16384,
	}, families)
	c.Assert(dgpu.Discrete, qt.IsTrue)
	c.Assert(dgpu.MaxImageDimension2D, qt.Equals, uint32(16384))
	c.Assert(dgpu.MissingExtensions, qt.HasLen, 0)
	c.Assert(dgpu.Families, qt.Equals, families)

	igpu := device.NewCandidate(nil, device.PhysicalDeviceInfo{
		Name:                "igpu",
		DeviceType:          vk.PhysicalDeviceTypeIntegratedGpu,
		MaxImageDimension2D: 8192,
	}, families)
	c.Assert(igpu.Discrete, qt.IsFalse)
	c.Assert(igpu.MissingExtensions, qt.DeepEquals, []string{"VK_KHR_swapchain"})
}

func TestNoSuitableDeviceWrapped(t *testing.T) {
	c := qt.New(t)

	_, err := device.Select(nil)
	c.Assert(errors.Wrap(err, "renderer"), qt.ErrorIs, device.ErrNoSuitableDevice)
}
