// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"testing"

	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"
)

func TestFullViewport(t *testing.T) {
	c := qt.New(t)

	extent := vk.Extent2D{Width: 1280, Height: 720}
	viewport, scissor := fullViewport(extent)
	c.Assert([6]float32{viewport.X, viewport.Y, viewport.Width, viewport.Height, viewport.MinDepth, viewport.MaxDepth},
		qt.Equals, [6]float32{0, 0, 1280, 720, 0, 1})
	c.Assert([2]int32{scissor.Offset.X, scissor.Offset.Y}, qt.Equals, [2]int32{0, 0})
	c.Assert([2]uint32{scissor.Extent.Width, scissor.Extent.Height}, qt.Equals, [2]uint32{1280, 720})
}
