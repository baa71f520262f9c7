// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/trigon/core"
)

func TestOpenUnknownBackend(t *testing.T) {
	c := qt.New(t)

	cfg := core.DefaultConfiguration().Window
	cfg.Backend = "wayland-direct"
	window, err := Open(cfg)
	c.Assert(err, qt.ErrorMatches, `unknown window backend "wayland-direct"`)
	c.Assert(window, qt.IsNil)
}

func TestDrawableSize(t *testing.T) {
	c := qt.New(t)

	w, h := drawableSize(800, 600)
	c.Assert([2]uint32{w, h}, qt.Equals, [2]uint32{800, 600})

	w, h = drawableSize(-1, 0)
	c.Assert([2]uint32{w, h}, qt.Equals, [2]uint32{0, 0})
}
