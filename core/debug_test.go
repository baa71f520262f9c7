// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"
	log "github.com/sirupsen/logrus"
	vk "github.com/vulkan-go/vulkan"
)

func TestDebugLevel(t *testing.T) {
	c := qt.New(t)

	for _, test := range []struct {
		flags vk.DebugReportFlagBits
		want  log.Level
	}{
		{vk.DebugReportErrorBit, log.ErrorLevel},
		{vk.DebugReportErrorBit | vk.DebugReportWarningBit, log.ErrorLevel},
		{vk.DebugReportWarningBit, log.WarnLevel},
		{vk.DebugReportPerformanceWarningBit, log.WarnLevel},
		{vk.DebugReportInformationBit, log.InfoLevel},
		{vk.DebugReportDebugBit, log.DebugLevel},
	} {
		c.Check(debugLevel(vk.DebugReportFlags(test.flags)), qt.Equals, test.want)
	}
}

func TestDebugReporterLogs(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	logger := log.New()
	logger.Out = &buf
	logger.Formatter = &log.JSONFormatter{}

	report := debugReporter(logger)
	ret := report(vk.DebugReportFlags(vk.DebugReportWarningBit), 0, 0, 0, 42, "Validation", "bad usage", nil)
	c.Assert(ret, qt.Equals, vk.Bool32(vk.False))
	c.Assert(buf.String(), qt.Contains, `"level":"warning"`)
	c.Assert(buf.String(), qt.Contains, `"msg":"bad usage"`)
	c.Assert(buf.String(), qt.Contains, `"code":42`)
}
