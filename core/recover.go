// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// surfaceRebuilder is what recovery after a stale surface works on.
type surfaceRebuilder interface {
	recreateSwapchain() error
	rebuildFramebuffers() error
	destroyPipeline()
	destroyRenderTargets()
	createRenderTargets() error
	createPipeline() error
}

// recoverSurface recreates the swapchain and whatever depends on it. The
// framebuffers are rebuilt in place unless the swapchain format changed,
// then the render targets and the pipeline are rebuilt in dependency order.
func recoverSurface(r surfaceRebuilder, logger log.FieldLogger) error {
	logger = orDiscard(logger)

	if err := r.recreateSwapchain(); err != nil {
		return err
	}

	err := r.rebuildFramebuffers()
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrFormatMismatch) {
		return errors.Wrap(err, "rebuild framebuffers")
	}

	logger.Info("rebuilding render targets and pipeline")
	r.destroyPipeline()
	r.destroyRenderTargets()
	if err := r.createRenderTargets(); err != nil {
		return errors.Wrap(err, "render targets")
	}
	if err := r.createPipeline(); err != nil {
		return errors.Wrap(err, "pipeline")
	}
	return nil
}
