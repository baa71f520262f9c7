// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

/*
#include <stdint.h>
#include <stdlib.h>

// Layouts of VkSwapchainPresentFenceInfoEXT and
// VkPhysicalDeviceSwapchainMaintenance1FeaturesEXT.
typedef struct {
	int32_t     sType;
	const void* pNext;
	uint32_t    swapchainCount;
	void**      pFences;
} trigonPresentFenceInfo;

typedef struct {
	int32_t  sType;
	void*    pNext;
	uint32_t swapchainMaintenance1;
} trigonSwapchainMaintenanceFeatures;
*/
import "C"

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

const (
	structureTypeSwapchainMaintenanceFeatures = 1000275000
	structureTypeSwapchainPresentFenceInfo    = 1000275001
)

// presentFenceInfo is a present info pNext asking the presentation engine
// to signal a fence once the image's present resources are reusable.
// It lives in C memory so it can be chained under cgo pointer rules.
type presentFenceInfo struct {
	info   *C.trigonPresentFenceInfo
	fences *unsafe.Pointer
}

func newPresentFenceInfo() *presentFenceInfo {
	info := (*C.trigonPresentFenceInfo)(C.calloc(1, C.size_t(unsafe.Sizeof(C.trigonPresentFenceInfo{}))))
	fences := (*unsafe.Pointer)(C.calloc(1, C.size_t(unsafe.Sizeof(uintptr(0)))))
	info.sType = structureTypeSwapchainPresentFenceInfo
	info.swapchainCount = 1
	info.pFences = (*unsafe.Pointer)(fences)
	return &presentFenceInfo{
		info:   info,
		fences: fences,
	}
}

// chain points the info at fence and returns it for PresentInfo.PNext.
func (p *presentFenceInfo) chain(fence vk.Fence) unsafe.Pointer {
	*p.fences = unsafe.Pointer(fence)
	return unsafe.Pointer(p.info)
}

func (p *presentFenceInfo) free() {
	if p == nil || p.info == nil {
		return
	}
	C.free(unsafe.Pointer(p.fences))
	C.free(unsafe.Pointer(p.info))
	p.info = nil
	p.fences = nil
}

// swapchainMaintenanceFeatures enables swapchainMaintenance1 at device creation.
type swapchainMaintenanceFeatures struct {
	features *C.trigonSwapchainMaintenanceFeatures
}

func newSwapchainMaintenanceFeatures() *swapchainMaintenanceFeatures {
	features := (*C.trigonSwapchainMaintenanceFeatures)(C.calloc(1, C.size_t(unsafe.Sizeof(C.trigonSwapchainMaintenanceFeatures{}))))
	features.sType = structureTypeSwapchainMaintenanceFeatures
	features.swapchainMaintenance1 = C.uint32_t(vk.True)
	return &swapchainMaintenanceFeatures{features: features}
}

func (s *swapchainMaintenanceFeatures) pointer() unsafe.Pointer {
	return unsafe.Pointer(s.features)
}

func (s *swapchainMaintenanceFeatures) free() {
	if s == nil || s.features == nil {
		return
	}
	C.free(unsafe.Pointer(s.features))
	s.features = nil
}
