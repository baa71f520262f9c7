// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// fakeRebuilder tracks a swapchain format, a render pass format and a
// pipeline generation the way the renderer's objects depend on each other.
type fakeRebuilder struct {
	calls []string

	swapchainFormat vk.Format
	nextFormat      vk.Format
	targetFormat    vk.Format
	hasTargets      bool
	pipeline        int
	pipelines       int

	recreateErr error
}

func newFakeRebuilder(format vk.Format) *fakeRebuilder {
	return &fakeRebuilder{
		swapchainFormat: format,
		nextFormat:      format,
		targetFormat:    format,
		hasTargets:      true,
		pipeline:        1,
		pipelines:       1,
	}
}

func (f *fakeRebuilder) recreateSwapchain() error {
	f.calls = append(f.calls, "recreate swapchain")
	if f.recreateErr != nil {
		return f.recreateErr
	}
	f.swapchainFormat = f.nextFormat
	return nil
}

func (f *fakeRebuilder) rebuildFramebuffers() error {
	f.calls = append(f.calls, "rebuild framebuffers")
	if f.swapchainFormat != f.targetFormat {
		return ErrFormatMismatch
	}
	return nil
}

func (f *fakeRebuilder) destroyPipeline() {
	f.calls = append(f.calls, "destroy pipeline")
	f.pipeline = 0
}

func (f *fakeRebuilder) destroyRenderTargets() {
	f.calls = append(f.calls, "destroy render targets")
	f.hasTargets = false
}

func (f *fakeRebuilder) createRenderTargets() error {
	f.calls = append(f.calls, "create render targets")
	f.targetFormat = f.swapchainFormat
	f.hasTargets = true
	return nil
}

func (f *fakeRebuilder) createPipeline() error {
	f.calls = append(f.calls, "create pipeline")
	if !f.hasTargets {
		return errors.New("no render pass")
	}
	f.pipelines++
	f.pipeline = f.pipelines
	return nil
}

func TestRecoverSameFormatKeepsPipeline(t *testing.T) {
	c := qt.New(t)

	r := newFakeRebuilder(vk.FormatB8g8r8a8Srgb)
	c.Assert(recoverSurface(r, nil), qt.IsNil)
	c.Assert(r.calls, qt.DeepEquals, []string{"recreate swapchain", "rebuild framebuffers"})
	c.Assert(r.pipeline, qt.Equals, 1)
}

func TestRecoverFormatChangeRebuildsInOrder(t *testing.T) {
	c := qt.New(t)

	r := newFakeRebuilder(vk.FormatB8g8r8a8Srgb)
	r.nextFormat = vk.FormatB8g8r8a8Unorm

	c.Assert(recoverSurface(r, nil), qt.IsNil)
	c.Assert(r.calls, qt.DeepEquals, []string{
		"recreate swapchain",
		"rebuild framebuffers",
		"destroy pipeline",
		"destroy render targets",
		"create render targets",
		"create pipeline",
	})
	c.Assert(r.targetFormat, qt.Equals, vk.FormatB8g8r8a8Unorm)
	c.Assert(r.pipeline, qt.Equals, 2)

	// A second recovery with the new format leaves the pipeline alone.
	r.calls = nil
	c.Assert(recoverSurface(r, nil), qt.IsNil)
	c.Assert(r.calls, qt.HasLen, 2)
	c.Assert(r.pipeline, qt.Equals, 2)
}

func TestRecoverDeferred(t *testing.T) {
	c := qt.New(t)

	r := newFakeRebuilder(vk.FormatB8g8r8a8Srgb)
	r.recreateErr = ErrRecreateDeferred

	err := recoverSurface(r, nil)
	c.Assert(err, qt.ErrorIs, ErrRecreateDeferred)
	c.Assert(r.calls, qt.DeepEquals, []string{"recreate swapchain"})
}

func TestRecoverSwapchainFailure(t *testing.T) {
	c := qt.New(t)

	r := newFakeRebuilder(vk.FormatB8g8r8a8Srgb)
	r.recreateErr = &ResultError{Op: "vk.CreateSwapchain()", Result: vk.ErrorOutOfDeviceMemory}

	err := recoverSurface(r, nil)
	c.Assert(IsResult(err, vk.ErrorOutOfDeviceMemory), qt.IsTrue)
	c.Assert(r.pipeline, qt.Equals, 1)
}
