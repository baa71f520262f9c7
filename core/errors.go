// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrFormatMismatch means the render pass was built for another
	// swapchain format and has to be rebuilt along with the pipeline
	ErrFormatMismatch = errors.New("render target format does not match swapchain")

	// ErrRecreateDeferred means the window closed while waiting for a
	// drawable area, nothing was recreated
	ErrRecreateDeferred = errors.New("swapchain recreation deferred")

	// ErrInvalidShader means a blob is not SPIR-V
	ErrInvalidShader = errors.New("invalid SPIR-V blob")

	// ErrShaderMissing means a source holds no compiled shader for a stage
	ErrShaderMissing = errors.New("compiled shader missing")
)

// ResultError is a failed Vulkan call.
type ResultError struct {
	Op     string
	Result vk.Result
}

func (e *ResultError) Error() string {
	return e.Op + ": " + resultString(e.Result)
}

// vkError turns a non-success result of op into an error, logging it.
func vkError(logger log.FieldLogger, op string, ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	err := &ResultError{Op: op, Result: ret}
	orDiscard(logger).WithFields(log.Fields{
		"op":     op,
		"result": resultString(ret),
	}).Error("vulkan call failed")
	return errors.WithStack(err)
}

// IsResult reports whether err came from a Vulkan call returning ret.
func IsResult(err error, ret vk.Result) bool {
	var re *ResultError
	if errors.As(err, &re) {
		return re.Result == ret
	}
	return false
}

var resultNames = map[vk.Result]string{
	vk.Success:                       "VK_SUCCESS",
	vk.NotReady:                      "VK_NOT_READY",
	vk.Timeout:                       "VK_TIMEOUT",
	vk.EventSet:                      "VK_EVENT_SET",
	vk.EventReset:                    "VK_EVENT_RESET",
	vk.Incomplete:                    "VK_INCOMPLETE",
	vk.ErrorOutOfHostMemory:          "VK_ERROR_OUT_OF_HOST_MEMORY",
	vk.ErrorOutOfDeviceMemory:        "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	vk.ErrorInitializationFailed:     "VK_ERROR_INITIALIZATION_FAILED",
	vk.ErrorDeviceLost:               "VK_ERROR_DEVICE_LOST",
	vk.ErrorMemoryMapFailed:          "VK_ERROR_MEMORY_MAP_FAILED",
	vk.ErrorLayerNotPresent:          "VK_ERROR_LAYER_NOT_PRESENT",
	vk.ErrorExtensionNotPresent:      "VK_ERROR_EXTENSION_NOT_PRESENT",
	vk.ErrorFeatureNotPresent:        "VK_ERROR_FEATURE_NOT_PRESENT",
	vk.ErrorIncompatibleDriver:       "VK_ERROR_INCOMPATIBLE_DRIVER",
	vk.ErrorTooManyObjects:           "VK_ERROR_TOO_MANY_OBJECTS",
	vk.ErrorFormatNotSupported:       "VK_ERROR_FORMAT_NOT_SUPPORTED",
	vk.ErrorFragmentedPool:           "VK_ERROR_FRAGMENTED_POOL",
	vk.ErrorSurfaceLost:              "VK_ERROR_SURFACE_LOST_KHR",
	vk.ErrorNativeWindowInUse:        "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
	vk.Suboptimal:                    "VK_SUBOPTIMAL_KHR",
	vk.ErrorOutOfDate:                "VK_ERROR_OUT_OF_DATE_KHR",
	vk.ErrorIncompatibleDisplay:      "VK_ERROR_INCOMPATIBLE_DISPLAY_KHR",
	vk.ErrorValidationFailed:         "VK_ERROR_VALIDATION_FAILED_EXT",
}

// resultString decodes a Vulkan result code.
func resultString(ret vk.Result) string {
	if name, ok := resultNames[ret]; ok {
		return name
	}
	if err := vk.Error(ret); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("VkResult(%d)", int32(ret))
}
