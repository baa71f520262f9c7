// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xlab/closer"

	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/platform"
)

func init() {
	runtime.LockOSThread()
}

var (
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
	debug        = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	configPath   = flag.String("config", "", "TOML configuration file")
	envFile      = flag.String("env", "", "dotenv file with TRIGON_ overrides")
	backend      = flag.String("window", "", "Window backend, sdl or glfw")
	fps          = flag.Int("fps", -1, "Frame rate cap, 0 draws unthrottled")
)

const usage = `Usage: trigon [flags]

The triangle shaders are GLSL in shaders/. Compile them to SPIR-V before
building, glslangValidator has to be on PATH:

	go generate ./shaders

The SPIR-V is then read from ./shaders, the packr box built into the
binary, or a kar bundle made with "kar -c shaders -f shaders.kar".

Flags:
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	defer closer.Close()

	if err := run(); err != nil {
		log.WithError(err).Error("trigon stopped")
		closer.Exit(1)
	}
}

func run() error {
	cfg, err := core.LoadConfiguration(*configPath, *envFile)
	if err != nil {
		return errors.Wrap(err, "configuration")
	}
	if *debug {
		cfg.Renderer.DebugMode = true
	}
	if *backend != "" {
		cfg.Window.Backend = *backend
	}
	if *fps >= 0 {
		cfg.Time.FramesPerSecond = *fps
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := core.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	log.SetOutput(logger.Out)
	log.SetFormatter(logger.Formatter)

	// Signals are handled off the main thread, teardown stays on it.
	// doneC is deferred first so it fires after every resource is released.
	exitC := make(chan struct{}, 1)
	doneC := make(chan struct{}, 1)
	closer.Bind(func() {
		select {
		case exitC <- struct{}{}:
		default:
		}
		<-doneC
	})
	defer func() { doneC <- struct{}{} }()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			return err
		}
		if err := trace.Start(f); err != nil {
			return err
		}
		defer trace.Stop()
	}

	shaders, err := core.NewShaderSource(cfg.Shaders)
	if err != nil {
		return err
	}

	window, err := platform.Open(cfg.Window)
	if err != nil {
		return err
	}
	defer window.Destroy()

	renderer, err := core.NewVulkanRenderer(window, shaders, cfg.Renderer, logger)
	if errors.Is(err, core.ErrShaderMissing) {
		return errors.Wrap(err, "run go generate ./shaders first")
	}
	if err != nil {
		return err
	}
	defer renderer.Destroy()

	timeService := core.NewTime(cfg.Time)
	defer timeService.Stop()

	selected := renderer.Selected()
	logger.WithFields(log.Fields{
		"device":   selected.Info.Name,
		"discrete": selected.Discrete,
		"fps_cap":  timeService.Fps(),
		"backend":  cfg.Window.Backend,
	}).Info("drawing")

	ctx, cancel := context.WithCancel(context.Background())
	var counterSync sync.WaitGroup
	counterSync.Add(1)
	go countFrames(ctx, &counterSync, timeService, logger)
	defer counterSync.Wait()
	defer cancel()

	return drawLoop(window, renderer, timeService, exitC, logger)
}

func drawLoop(window core.Window, renderer core.Renderer, timeService *core.Time, exitC <-chan struct{}, logger log.FieldLogger) error {
	for {
		select {
		case <-exitC:
			logger.Info("interrupted")
			return nil
		default:
		}

		if timeService.EventsDue() {
			window.PollEvents()
		}
		if window.ShouldClose() {
			logger.Info("window closed")
			return nil
		}

		result, err := renderer.Draw()
		switch result {
		case core.DrawOk:
			timeService.FrameDone()
		case core.DrawNeedRecreate:
			if err := renderer.Recover(); err != nil {
				if errors.Is(err, core.ErrRecreateDeferred) {
					continue
				}
				return errors.Wrap(err, "recover")
			}
		case core.DrawError:
			return errors.Wrap(err, "draw")
		}

		timeService.Pace()
	}
}

func countFrames(ctx context.Context, wg *sync.WaitGroup, timeService *core.Time, logger log.FieldLogger) {
	defer wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.WithFields(log.Fields{
				"fps":       timeService.TakeFrames(),
				"cgo_calls": runtime.NumCgoCall(),
			}).Debug("frame count")
		}
	}
}
