// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/trigon/core"
)

func writeFile(c *qt.C, name, contents string) string {
	path := filepath.Join(c.TempDir(), name)
	c.Assert(os.WriteFile(path, []byte(contents), 0644), qt.IsNil)
	return path
}

func TestDefaultConfigurationIsValid(t *testing.T) {
	c := qt.New(t)

	cfg := core.DefaultConfiguration()
	c.Assert(cfg.Validate(), qt.IsNil)
	c.Assert(cfg.Renderer.FramesInFlight, qt.Equals, uint32(2))
	c.Assert(cfg.Renderer.ClearColor, qt.Equals, mgl32.Vec4{0, 0, 0, 1})
}

func TestLoadConfigurationFile(t *testing.T) {
	c := qt.New(t)

	path := writeFile(c, "trigon.toml", `
[renderer]
frames_in_flight = 3
clear_color = [0.1, 0.2, 0.3, 1.0]

[window]
backend = "glfw"
width = 1024
`)

	cfg, err := core.LoadConfiguration(path, "")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Renderer.FramesInFlight, qt.Equals, uint32(3))
	c.Assert(cfg.Renderer.ClearColor, qt.Equals, mgl32.Vec4{0.1, 0.2, 0.3, 1.0})
	c.Assert(cfg.Window.Backend, qt.Equals, core.BackendGLFW)
	c.Assert(cfg.Window.Width, qt.Equals, uint32(1024))
	c.Assert(cfg.Window.Height, qt.Equals, uint32(600))
}

func TestLoadConfigurationEnvironment(t *testing.T) {
	c := qt.New(t)

	c.Setenv("TRIGON_HEIGHT", "720")
	c.Setenv("TRIGON_DEBUG", "true")
	envFile := writeFile(c, "test.env", "TRIGON_SHADER_SOURCE=directory\n")
	c.Cleanup(func() { os.Unsetenv("TRIGON_SHADER_SOURCE") })

	cfg, err := core.LoadConfiguration("", envFile)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Window.Height, qt.Equals, uint32(720))
	c.Assert(cfg.Renderer.DebugMode, qt.IsTrue)
	c.Assert(cfg.Shaders.Source, qt.Equals, core.ShaderSourceDirectory)
}

func TestLoadConfigurationBadEnvironment(t *testing.T) {
	c := qt.New(t)

	c.Setenv("TRIGON_FRAMES_IN_FLIGHT", "many")
	_, err := core.LoadConfiguration("", "")
	c.Assert(err, qt.ErrorMatches, `parse TRIGON_FRAMES_IN_FLIGHT: .*`)
}

func TestValidate(t *testing.T) {
	c := qt.New(t)

	tests := map[string]func(*core.Configuration){
		"no frames in flight": func(cfg *core.Configuration) { cfg.Renderer.FramesInFlight = 0 },
		"empty window":        func(cfg *core.Configuration) { cfg.Window.Width = 0 },
		"negative fps":        func(cfg *core.Configuration) { cfg.Time.FramesPerSecond = -1 },
		"unknown backend":     func(cfg *core.Configuration) { cfg.Window.Backend = "x11" },
		"unknown shaders":     func(cfg *core.Configuration) { cfg.Shaders.Source = "network" },
	}
	for name, mutate := range tests {
		c.Run(name, func(c *qt.C) {
			cfg := core.DefaultConfiguration()
			mutate(&cfg)
			c.Assert(cfg.Validate(), qt.IsNotNil)
		})
	}
}
