// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"unsafe"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// Instance extensions enabled when the loader lists them.
const (
	PortabilityEnumerationExtensionName = "VK_KHR_portability_enumeration"
	SurfaceMaintenanceExtensionName     = "VK_EXT_surface_maintenance1"
	SurfaceCapabilities2ExtensionName   = "VK_KHR_get_surface_capabilities2"

	// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	instanceCreateEnumeratePortability = 0x00000001
)

// InstanceConfiguration is what the instance is built from.
type InstanceConfiguration struct {
	ApplicationName string
	DebugMode       bool

	// Extensions are required, usually the window's surface extensions
	Extensions []string
	Layers     []string
}

// NewVulkanInstance loads the Vulkan entry points and creates an instance.
// procAddr may be nil to use the default loader.
func NewVulkanInstance(procAddr unsafe.Pointer, cfg InstanceConfiguration, logger log.FieldLogger) (*VulkanInstance, error) {
	logger = orDiscard(logger)

	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}

	available, err := instanceExtensions()
	if err != nil {
		return nil, err
	}
	for _, ext := range cfg.Extensions {
		if !contains(available, ext) {
			return nil, errors.Errorf("required instance extension %s not available", ext)
		}
	}

	extensions := append([]string(nil), cfg.Extensions...)
	layers := append([]string(nil), cfg.Layers...)

	var flags vk.InstanceCreateFlags
	if contains(available, PortabilityEnumerationExtensionName) {
		extensions = append(extensions, PortabilityEnumerationExtensionName)
		flags |= vk.InstanceCreateFlags(instanceCreateEnumeratePortability)
	}

	surfaceMaintenance := contains(available, SurfaceMaintenanceExtensionName) &&
		contains(available, SurfaceCapabilities2ExtensionName)
	if surfaceMaintenance {
		extensions = append(extensions, SurfaceMaintenanceExtensionName, SurfaceCapabilities2ExtensionName)
	}

	debugReport := false
	if cfg.DebugMode {
		if contains(available, DebugReportExtensionName) {
			extensions = append(extensions, DebugReportExtensionName)
			debugReport = true
		} else {
			logger.Warn(DebugReportExtensionName + " not available, validation messages are lost")
		}

		availableLayers, err := instanceLayers()
		if err != nil {
			return nil, err
		}
		if contains(availableLayers, ValidationLayerName) {
			layers = append(layers, ValidationLayerName)
		} else {
			logger.Warn(ValidationLayerName + " not installed, running without validation")
		}
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(cfg.ApplicationName),
		PEngineName:        "trigon\x00",
	}

	ici := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		Flags:                   flags,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}

	var instance vk.Instance
	if err := vkError(logger, "vk.CreateInstance()", vk.CreateInstance(&ici, nil, &instance)); err != nil {
		return nil, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}

	v := &VulkanInstance{
		logger:             logger,
		instance:           instance,
		extensions:         extensions,
		layers:             layers,
		surfaceMaintenance: surfaceMaintenance,
	}
	if debugReport {
		v.debugCallback = createDebugCallback(instance, logger)
	}

	logger.WithFields(log.Fields{
		"extensions": extensions,
		"layers":     layers,
	}).Debug("vulkan instance created")
	return v, nil
}

// VulkanInstance owns the instance and its debug callback.
type VulkanInstance struct {
	logger log.FieldLogger

	instance      vk.Instance
	debugCallback vk.DebugReportCallback

	extensions         []string
	layers             []string
	surfaceMaintenance bool
}

// Instance returns the internal vk.Instance
func (v *VulkanInstance) Instance() vk.Instance {
	return v.instance
}

// Extensions lists the enabled instance extensions.
func (v *VulkanInstance) Extensions() []string {
	return v.extensions
}

// SurfaceMaintenance reports whether the surface maintenance pair is enabled,
// swapchain maintenance on the device depends on it.
func (v *VulkanInstance) SurfaceMaintenance() bool {
	return v.surfaceMaintenance
}

// Destroy releases the debug callback and the instance.
func (v *VulkanInstance) Destroy() {
	if v == nil || v.instance == nil {
		return
	}
	if v.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(v.instance, v.debugCallback, nil)
		v.debugCallback = vk.NullDebugReportCallback
	}
	vk.DestroyInstance(v.instance, nil)
	v.instance = nil
}

func instanceExtensions() ([]string, error) {
	var count uint32
	if err := vkError(nil, "vk.EnumerateInstanceExtensionProperties()",
		vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := vkError(nil, "vk.EnumerateInstanceExtensionProperties()",
		vk.EnumerateInstanceExtensionProperties("", &count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range props[:count] {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

func instanceLayers() ([]string, error) {
	var count uint32
	if err := vkError(nil, "vk.EnumerateInstanceLayerProperties()",
		vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, count)
	if err := vkError(nil, "vk.EnumerateInstanceLayerProperties()",
		vk.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range props[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}
