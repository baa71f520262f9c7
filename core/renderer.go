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

// NewVulkanRenderer brings up everything needed to draw into window. Any
// failure tears down what was already created.
func NewVulkanRenderer(window Window, shaders ShaderSource, cfg RendererConfiguration, logger log.FieldLogger) (*VulkanRenderer, error) {
	logger = orDiscard(logger)
	if cfg.FramesInFlight == 0 {
		return nil, errors.New("frames in flight must be at least 1")
	}

	vertex, fragment, err := shaders.Shaders()
	if err != nil {
		return nil, errors.Wrap(err, "load shaders")
	}

	r := &VulkanRenderer{
		logger:   logger,
		config:   cfg,
		window:   window,
		vertex:   vertex,
		fragment: fragment,
	}
	if err := r.initialise(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

var _ Renderer = (*VulkanRenderer)(nil)

// VulkanRenderer owns the Vulkan objects for one window.
type VulkanRenderer struct {
	logger log.FieldLogger
	config RendererConfiguration
	window Window

	vertex   []byte
	fragment []byte

	instance      *VulkanInstance
	surface       vk.Surface
	selected      device.Candidate
	device        *VulkanDevice
	swapchain     *VulkanSwapchain
	targets       *RenderTargets
	pipelineCache vk.PipelineCache
	pipeline      *Pipeline
	commands      *CommandRecorder
	sync          *FrameSync

	frame *vulkanFrame
	loop  *frameLoop
}

func (r *VulkanRenderer) initialise() error {
	instance, err := NewVulkanInstance(r.window.ProcAddr(), InstanceConfiguration{
		ApplicationName: r.config.ApplicationName,
		DebugMode:       r.config.DebugMode,
		Extensions:      r.window.RequiredInstanceExtensions(),
	}, r.logger)
	if err != nil {
		return errors.Wrap(err, "instance")
	}
	r.instance = instance

	surface, err := r.window.CreateSurface(instance.Instance())
	if err != nil {
		return errors.Wrap(err, "surface")
	}
	r.surface = surface

	candidates, err := device.Candidates(instance.Instance(), surface)
	if err != nil {
		return errors.Wrap(err, "probe devices")
	}
	for _, c := range candidates {
		r.logger.WithFields(log.Fields{
			"device":  c.Info.Name,
			"score":   device.Score(c),
			"reasons": c.Disqualifications(),
		}).Debug("device candidate")
	}
	selected, err := device.Select(candidates)
	if err != nil {
		return err
	}
	r.selected = selected

	if r.device, err = NewVulkanDevice(selected, instance.SurfaceMaintenance(), r.logger); err != nil {
		return errors.Wrap(err, "device")
	}
	if r.swapchain, err = NewVulkanSwapchain(r.device, surface, r.window, r.logger); err != nil {
		return errors.Wrap(err, "swapchain")
	}
	if err := r.createRenderTargets(); err != nil {
		return errors.Wrap(err, "render targets")
	}
	if r.pipelineCache, err = createPipelineCache(r.device.Device(), r.logger); err != nil {
		return errors.Wrap(err, "pipeline cache")
	}
	if err := r.createPipeline(); err != nil {
		return errors.Wrap(err, "pipeline")
	}

	frames := r.config.FramesInFlight
	if r.commands, err = NewCommandRecorder(r.device.Device(), r.device.Families().Graphics, frames, r.config.ClearColor, r.logger); err != nil {
		return errors.Wrap(err, "commands")
	}
	if r.sync, err = NewFrameSync(r.device.Device(), frames, r.logger); err != nil {
		return errors.Wrap(err, "sync")
	}

	r.frame = &vulkanFrame{r: r}
	if r.device.PresentFences() {
		r.frame.fenceInfo = newPresentFenceInfo()
	}
	r.loop = newFrameLoop(r.frame, frames, r.logger)

	r.logger.WithFields(log.Fields{
		"device": selected.Info.Name,
		"score":  device.Score(selected),
		"frames": frames,
	}).Info("renderer ready")
	return nil
}

// Selected is the physical device being rendered with.
func (r *VulkanRenderer) Selected() device.Candidate {
	return r.selected
}

// Draw implements interface
func (r *VulkanRenderer) Draw() (DrawResult, error) {
	return r.loop.draw()
}

// Recover implements interface. ErrRecreateDeferred means the window is
// closing while minimized and nothing was rebuilt.
func (r *VulkanRenderer) Recover() error {
	return recoverSurface(r, r.logger)
}

func (r *VulkanRenderer) recreateSwapchain() error {
	return r.swapchain.Recreate()
}

func (r *VulkanRenderer) rebuildFramebuffers() error {
	return r.targets.RebuildFramebuffers(r.swapchain)
}

func (r *VulkanRenderer) destroyPipeline() {
	r.pipeline.Destroy()
	r.pipeline = nil
}

func (r *VulkanRenderer) destroyRenderTargets() {
	r.targets.Destroy()
	r.targets = nil
}

func (r *VulkanRenderer) createRenderTargets() error {
	targets, err := NewRenderTargets(r.device.Device(), r.swapchain, r.logger)
	if err != nil {
		return err
	}
	r.targets = targets
	return nil
}

func (r *VulkanRenderer) createPipeline() error {
	pipeline, err := NewPipeline(r.device.Device(), r.targets.RenderPass(), r.pipelineCache, r.vertex, r.fragment, r.logger)
	if err != nil {
		return err
	}
	r.pipeline = pipeline
	return nil
}

// Destroy implements interface. Objects go in reverse order of creation,
// the window is left to its owner.
func (r *VulkanRenderer) Destroy() {
	if r.device != nil {
		if err := r.device.WaitIdle(); err != nil {
			r.logger.WithError(err).Warn("device did not go idle before teardown")
		}
	}

	r.sync.Destroy()
	r.sync = nil
	r.commands.Destroy()
	r.commands = nil
	if r.frame != nil {
		r.frame.fenceInfo.free()
		r.frame = nil
	}

	r.targets.Destroy()
	r.targets = nil
	r.pipeline.Destroy()
	r.pipeline = nil
	if r.pipelineCache != nil {
		vk.DestroyPipelineCache(r.device.Device(), r.pipelineCache, nil)
		r.pipelineCache = nil
	}

	r.swapchain.Destroy()
	r.swapchain = nil
	r.device.Destroy()
	r.device = nil

	if r.surface != vk.NullSurface && r.instance != nil {
		vk.DestroySurface(r.instance.Instance(), r.surface, nil)
		r.surface = vk.NullSurface
	}
	r.instance.Destroy()
	r.instance = nil
}
