// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// NewLogger builds the process logger from cfg.
func NewLogger(cfg LogConfiguration) (*log.Logger, error) {
	logger := log.New()
	logger.Out = os.Stderr

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		logger.Formatter = &log.TextFormatter{FullTimestamp: true}
	case "json":
		logger.Formatter = &log.JSONFormatter{}
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}
	return logger, nil
}

// orDiscard makes logging optional for components.
func orDiscard(logger log.FieldLogger) log.FieldLogger {
	if logger != nil {
		return logger
	}
	discard := log.New()
	discard.Out = ioutil.Discard
	discard.SetLevel(log.PanicLevel)
	return discard
}
