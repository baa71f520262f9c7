// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Window backends
const (
	BackendSDL  = "sdl"
	BackendGLFW = "glfw"
)

// Shader sources
const (
	ShaderSourceDirectory = "directory"
	ShaderSourceBox       = "box"
	ShaderSourceArchive   = "archive"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration     `toml:"time"`
	Renderer RendererConfiguration `toml:"renderer"`
	Window   WindowConfiguration   `toml:"window"`
	Log      LogConfiguration      `toml:"log"`
	Shaders  ShaderConfiguration   `toml:"shaders"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int `toml:"frames_per_second"`

	// EventPollDelay is the interval of the event ticker in milliseconds
	EventPollDelay int `toml:"event_poll_delay"`
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	// FramesInFlight is how many frames the host may record ahead of the GPU
	FramesInFlight uint32 `toml:"frames_in_flight"`

	// DebugMode loads the validation layer and the debug callback
	DebugMode bool `toml:"debug"`

	ClearColor      mgl32.Vec4 `toml:"clear_color"`
	ApplicationName string     `toml:"application_name"`
}

// WindowConfiguration is used to configure the platform window
type WindowConfiguration struct {
	Title     string `toml:"title"`
	Width     uint32 `toml:"width"`
	Height    uint32 `toml:"height"`
	Backend   string `toml:"backend"`
	Resizable bool   `toml:"resizable"`
	Hidden    bool   `toml:"hidden"`
}

// LogConfiguration is used to configure logging
type LogConfiguration struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ShaderConfiguration tells where the SPIR-V comes from
type ShaderConfiguration struct {
	Source    string `toml:"source"`
	Directory string `toml:"directory"`
	Archive   string `toml:"archive"`
}

// DefaultConfiguration returns the built in settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 0,
			EventPollDelay:  50,
		},
		Renderer: RendererConfiguration{
			FramesInFlight:  2,
			ClearColor:      mgl32.Vec4{0, 0, 0, 1},
			ApplicationName: "Trigon",
		},
		Window: WindowConfiguration{
			Title:     "Trigon",
			Width:     800,
			Height:    600,
			Backend:   BackendSDL,
			Resizable: true,
		},
		Log: LogConfiguration{
			Level:  "info",
			Format: "text",
		},
		Shaders: ShaderConfiguration{
			Source:    ShaderSourceBox,
			Directory: "./shaders",
			Archive:   "shaders.kar",
		},
	}
}

// LoadConfiguration layers the defaults, the TOML file at path (if not
// empty), the dotenv file at envFile (if not empty) and TRIGON_ variables.
func LoadConfiguration(path, envFile string) (Configuration, error) {
	cfg := DefaultConfiguration()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read configuration")
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "decode %s", path)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return cfg, errors.Wrapf(err, "load %s", envFile)
		}
	}
	envy.Reload()

	if err := cfg.applyEnvironment(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Configuration) applyEnvironment() error {
	uints := map[string]*uint32{
		"TRIGON_WIDTH":            &c.Window.Width,
		"TRIGON_HEIGHT":           &c.Window.Height,
		"TRIGON_FRAMES_IN_FLIGHT": &c.Renderer.FramesInFlight,
	}
	for key, dst := range uints {
		raw := envy.Get(key, "")
		if raw == "" {
			continue
		}
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "parse %s", key)
		}
		*dst = uint32(v)
	}

	if raw := envy.Get("TRIGON_FPS", ""); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return errors.Wrap(err, "parse TRIGON_FPS")
		}
		c.Time.FramesPerSecond = v
	}

	if raw := envy.Get("TRIGON_DEBUG", ""); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.Wrap(err, "parse TRIGON_DEBUG")
		}
		c.Renderer.DebugMode = v
	}

	strs := map[string]*string{
		"TRIGON_LOG_LEVEL":        &c.Log.Level,
		"TRIGON_LOG_FORMAT":       &c.Log.Format,
		"TRIGON_WINDOW_BACKEND":   &c.Window.Backend,
		"TRIGON_SHADER_SOURCE":    &c.Shaders.Source,
		"TRIGON_SHADER_DIRECTORY": &c.Shaders.Directory,
		"TRIGON_SHADER_ARCHIVE":   &c.Shaders.Archive,
	}
	for key, dst := range strs {
		if raw := envy.Get(key, ""); raw != "" {
			*dst = strings.TrimSpace(raw)
		}
	}
	return nil
}

// Validate rejects settings the renderer cannot run with.
func (c Configuration) Validate() error {
	if c.Renderer.FramesInFlight == 0 {
		return errors.New("renderer.frames_in_flight must be at least 1")
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return errors.Errorf("window size %dx%d is empty", c.Window.Width, c.Window.Height)
	}
	if c.Time.FramesPerSecond < 0 {
		return errors.New("time.frames_per_second must not be negative")
	}
	switch c.Window.Backend {
	case BackendSDL, BackendGLFW:
	default:
		return errors.Errorf("unknown window backend %q", c.Window.Backend)
	}
	switch c.Shaders.Source {
	case ShaderSourceDirectory, ShaderSourceBox, ShaderSourceArchive:
	default:
		return errors.Errorf("unknown shader source %q", c.Shaders.Source)
	}
	return nil
}
