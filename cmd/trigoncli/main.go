// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"

	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"

	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/platform"
)

func init() {
	runtime.LockOSThread()
}

var (
	backend = flag.String("window", core.BackendSDL, "Window backend, sdl or glfw")
	debug   = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	indent  = flag.Bool("indent", true, "Indent the JSON output")
)

type report struct {
	InstanceExtensions []string
	Devices            []deviceReport
}

type deviceReport struct {
	Name              string
	Selected          bool
	Score             uint64
	Disqualifications []string `json:",omitempty"`
	Candidate         device.Candidate
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger := log.New()
	logger.SetOutput(os.Stderr)

	cfg := core.DefaultConfiguration()
	cfg.Window.Backend = *backend
	cfg.Window.Hidden = true

	window, err := platform.Open(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	instance, err := core.NewVulkanInstance(window.ProcAddr(), core.InstanceConfiguration{
		ApplicationName: "trigoncli",
		DebugMode:       *debug,
		Extensions:      window.RequiredInstanceExtensions(),
	}, logger)
	if err != nil {
		return err
	}
	defer instance.Destroy()

	surface, err := window.CreateSurface(instance.Instance())
	if err != nil {
		return err
	}
	defer vk.DestroySurface(instance.Instance(), surface, nil)

	candidates, err := device.Candidates(instance.Instance(), surface)
	if err != nil {
		return err
	}

	selected, selectErr := device.Select(candidates)
	out := report{
		InstanceExtensions: instance.Extensions(),
		Devices:            make([]deviceReport, 0, len(candidates)),
	}
	for _, c := range candidates {
		out.Devices = append(out.Devices, deviceReport{
			Name:              c.Info.Name,
			Selected:          selectErr == nil && c.Handle == selected.Handle,
			Score:             device.Score(c),
			Disqualifications: c.Disqualifications(),
			Candidate:         c,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	if *indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(out); err != nil {
		return err
	}
	return selectErr
}
