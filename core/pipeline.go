// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// Pipeline is the fixed triangle pipeline and its empty layout.
type Pipeline struct {
	logger log.FieldLogger
	device vk.Device

	layout   vk.PipelineLayout
	pipeline vk.Pipeline
}

// NewPipeline builds the pipeline against renderPass. The shader modules
// only live for the duration of the call.
func NewPipeline(dev vk.Device, renderPass vk.RenderPass, cache vk.PipelineCache, vertex, fragment []byte, logger log.FieldLogger) (*Pipeline, error) {
	p := &Pipeline{
		logger: orDiscard(logger),
		device: dev,
	}

	vertexModule, err := p.createShaderModule(vertex, VertexShaderType)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(dev, vertexModule, nil)

	fragmentModule, err := p.createShaderModule(fragment, FragmentShaderType)
	if err != nil {
		return nil, err
	}
	defer vk.DestroyShaderModule(dev, fragmentModule, nil)

	plci := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	var layout vk.PipelineLayout
	if err := vkError(p.logger, "vk.CreatePipelineLayout()", vk.CreatePipelineLayout(dev, &plci, nil, &layout)); err != nil {
		return nil, err
	}
	p.layout = layout

	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: vertexModule,
		PName:  "main\x00",
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: fragmentModule,
		PName:  "main\x00",
	}}

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               vk.PrimitiveTopologyTriangleList,
			PrimitiveRestartEnable: vk.False,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:           vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode:     vk.PolygonModeFill,
			CullMode:        vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:       vk.FrontFaceClockwise,
			DepthBiasEnable: vk.False,
			LineWidth:       1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
					vk.ColorComponentBBit | vk.ColorComponentABit),
				BlendEnable: vk.False,
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates: []vk.DynamicState{
				vk.DynamicStateViewport,
				vk.DynamicStateScissor,
			},
		},
		Layout:     layout,
		RenderPass: renderPass,
	}}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := vkError(p.logger, "vk.CreateGraphicsPipelines()",
		vk.CreateGraphicsPipelines(dev, cache, uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		p.Destroy()
		return nil, err
	}
	p.pipeline = pipelines[0]
	return p, nil
}

func (p *Pipeline) createShaderModule(code []byte, shaderType ShaderType) (vk.ShaderModule, error) {
	words, err := spirvWords(code)
	if err != nil {
		return vk.NullShaderModule, errors.Wrapf(err, "%s shader", shaderType)
	}

	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}

	var module vk.ShaderModule
	if ret := vk.CreateShaderModule(p.device, &smci, nil, &module); ret != vk.Success {
		return vk.NullShaderModule, errors.Wrapf(vkError(p.logger, "vk.CreateShaderModule()", ret), "%s shader", shaderType)
	}
	return module, nil
}

// Handle returns the internal vk.Pipeline
func (p *Pipeline) Handle() vk.Pipeline {
	return p.pipeline
}

// Destroy destroys the pipeline and its layout.
func (p *Pipeline) Destroy() {
	if p == nil {
		return
	}
	if p.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(p.device, p.pipeline, nil)
		p.pipeline = vk.NullPipeline
	}
	if p.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(p.device, p.layout, nil)
		p.layout = vk.NullPipelineLayout
	}
}

func createPipelineCache(dev vk.Device, logger log.FieldLogger) (vk.PipelineCache, error) {
	pcci := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}

	var pipelineCache vk.PipelineCache
	if err := vkError(logger, "vk.CreatePipelineCache()", vk.CreatePipelineCache(dev, &pcci, nil, &pipelineCache)); err != nil {
		return nil, err
	}
	return pipelineCache, nil
}
