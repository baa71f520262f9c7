// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"unsafe"

	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

// DebugReportExtensionName is the instance extension behind the debug callback.
const DebugReportExtensionName = "VK_EXT_debug_report"

// ValidationLayerName is enabled in debug mode when installed.
const ValidationLayerName = "VK_LAYER_KHRONOS_validation"

const debugReportFlags = vk.DebugReportErrorBit |
	vk.DebugReportWarningBit |
	vk.DebugReportPerformanceWarningBit |
	vk.DebugReportInformationBit |
	vk.DebugReportDebugBit

// debugLevel maps report flags to a log level, most severe first.
func debugLevel(flags vk.DebugReportFlags) log.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return log.ErrorLevel
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return log.WarnLevel
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}

// debugReporter forwards validation messages to logger.
func debugReporter(logger log.FieldLogger) func(vk.DebugReportFlags, vk.DebugReportObjectType,
	uint64, uint, int32, string, string, unsafe.Pointer) vk.Bool32 {

	logger = orDiscard(logger)
	return func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
		object uint64, location uint, messageCode int32, pLayerPrefix string,
		pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

		entry := logger.WithFields(log.Fields{
			"layer": pLayerPrefix,
			"code":  messageCode,
		})
		switch debugLevel(flags) {
		case log.ErrorLevel:
			entry.Error(pMessage)
		case log.WarnLevel:
			entry.Warn(pMessage)
		case log.InfoLevel:
			entry.Info(pMessage)
		default:
			entry.Debug(pMessage)
		}
		return vk.Bool32(vk.False)
	}
}

// createDebugCallback registers the reporter, a failure only costs the messages.
func createDebugCallback(instance vk.Instance, logger log.FieldLogger) vk.DebugReportCallback {
	dbgci := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(debugReportFlags),
		PfnCallback: debugReporter(logger),
	}

	var callback vk.DebugReportCallback
	if ret := vk.CreateDebugReportCallback(instance, &dbgci, nil, &callback); ret != vk.Success {
		orDiscard(logger).WithField("result", resultString(ret)).Warn("debug report callback unavailable")
		return vk.NullDebugReportCallback
	}
	return callback
}
