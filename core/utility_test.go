// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"encoding/binary"
	"testing"

	qt "github.com/frankban/quicktest"
	vk "github.com/vulkan-go/vulkan"
)

func TestShaderTypeOf(t *testing.T) {
	c := qt.New(t)

	for name, want := range map[string]ShaderType{
		"triangle.vert.spv":   VertexShaderType,
		"triangle.frag.spv":   FragmentShaderType,
		"triangle.vert":       UnknownShaderType,
		"triangle.geom.spv":   UnknownShaderType,
		"tri.angle.vert.spv":  UnknownShaderType,
		"triangle.spv":        UnknownShaderType,
		"triangle.vert.spv.x": UnknownShaderType,
	} {
		c.Check(shaderTypeOf(name), qt.Equals, want, qt.Commentf(name))
	}
}

func TestValidateSPIRV(t *testing.T) {
	c := qt.New(t)

	le := make([]byte, 8)
	binary.LittleEndian.PutUint32(le, spirvMagic)
	c.Assert(validateSPIRV(le), qt.IsNil)

	be := make([]byte, 8)
	binary.BigEndian.PutUint32(be, spirvMagic)
	c.Assert(validateSPIRV(be), qt.IsNil)

	c.Assert(validateSPIRV(nil), qt.ErrorIs, ErrInvalidShader)
	c.Assert(validateSPIRV(le[:6]), qt.ErrorIs, ErrInvalidShader)
	c.Assert(validateSPIRV(make([]byte, 8)), qt.ErrorIs, ErrInvalidShader)
}

func TestSpirvWordsByteOrder(t *testing.T) {
	c := qt.New(t)

	want := []uint32{spirvMagic, 0x00010000, 42}

	le := make([]byte, 12)
	be := make([]byte, 12)
	for i, w := range want {
		binary.LittleEndian.PutUint32(le[i*4:], w)
		binary.BigEndian.PutUint32(be[i*4:], w)
	}

	words, err := spirvWords(le)
	c.Assert(err, qt.IsNil)
	c.Assert(words, qt.DeepEquals, want)

	// A byte swapped blob still reaches the driver with the magic first.
	words, err = spirvWords(be)
	c.Assert(err, qt.IsNil)
	c.Assert(words, qt.DeepEquals, want)
	c.Assert(words[0], qt.Equals, uint32(spirvMagic))

	_, err = spirvWords(le[:6])
	c.Assert(err, qt.ErrorIs, ErrInvalidShader)
}

func spirvBlob(size int) []byte {
	data := make([]byte, size)
	binary.LittleEndian.PutUint32(data, spirvMagic)
	return data
}

func BenchmarkSpirvWordsSmall(b *testing.B) {
	data := spirvBlob(100)
	for idx := 0; idx < b.N; idx++ {
		spirvWords(data)
	}
}

func BenchmarkSpirvWordsBig(b *testing.B) {
	data := spirvBlob(100000)
	for idx := 0; idx < b.N; idx++ {
		spirvWords(data)
	}
}

func TestSafeStrings(t *testing.T) {
	c := qt.New(t)

	c.Assert(safeString("VK_KHR_swapchain"), qt.Equals, "VK_KHR_swapchain\x00")
	c.Assert(safeString("VK_KHR_swapchain\x00"), qt.Equals, "VK_KHR_swapchain\x00")
	c.Assert(safeStrings([]string{"a", "b\x00"}), qt.DeepEquals, []string{"a\x00", "b\x00"})
	c.Assert(contains([]string{"a\x00", "b"}, "a"), qt.IsTrue)
	c.Assert(contains([]string{"a\x00", "b"}, "b\x00"), qt.IsTrue)
	c.Assert(contains([]string{"a\x00", "b"}, "c"), qt.IsFalse)
}

func TestResultError(t *testing.T) {
	c := qt.New(t)

	c.Assert(vkError(nil, "vk.QueueSubmit()", vk.Success), qt.IsNil)

	err := vkError(nil, "vk.QueueSubmit()", vk.ErrorDeviceLost)
	c.Assert(err, qt.ErrorMatches, "vk.QueueSubmit\\(\\): VK_ERROR_DEVICE_LOST")
	c.Assert(IsResult(err, vk.ErrorDeviceLost), qt.IsTrue)
	c.Assert(IsResult(err, vk.ErrorOutOfDate), qt.IsFalse)
	c.Assert(resultString(vk.Result(-12345)), qt.Not(qt.Equals), "")
}
