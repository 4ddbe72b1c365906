// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package debuglog sets up Logrus for the reasoner's commands: UTC timestamps
// with microseconds, the calling file and line relative to the module root,
// and either text or JSON output.
//
// Importing the package configures the standard logger with the default
// Options. Commands call ConfigureFrom once their configuration is loaded.
package debuglog

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/i-d-lytvynenko/kg-inference/config"
	"github.com/sirupsen/logrus"
)

func init() {
	Configure(Options{})
}

// Options control Configure. The zero value logs text at info level.
type Options struct {
	// The minimum level to log, as a logrus level name. Defaults to "info".
	// An invalid name is logged as a warning and replaced by the default.
	Level string
	// Log one JSON object per line instead of text.
	JSON bool
	// Highlight text output with ANSI colors, even if the output isn't a
	// terminal. Setting CLICOLOR_FORCE=1 in the environment does the same.
	ForceColors bool
	// The logger to set up. Defaults to logrus.StandardLogger().
	Logger *logrus.Logger
}

const timestampFormat = "2006-01-02 15:04:05.000000 MST"

// Configure sets up a logger. It may be called more than once, but not
// concurrently.
func Configure(opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	level, levelErr := logrus.InfoLevel, error(nil)
	if opts.Level != "" {
		if level, levelErr = logrus.ParseLevel(opts.Level); levelErr != nil {
			level = logrus.InfoLevel
		}
	}
	logger.SetLevel(level)
	logger.SetReportCaller(true)
	logger.ReplaceHooks(make(logrus.LevelHooks))
	logger.AddHook(callerHook{root: moduleRoot()})
	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:             true,
			TimestampFormat:           timestampFormat,
			ForceColors:               opts.ForceColors,
			EnvironmentOverrideColors: true,
		})
	}
	logger.WithFields(logrus.Fields{
		"level": level.String(),
		"json":  opts.JSON,
	}).Debug("Configured logging")
	if levelErr != nil {
		logger.WithError(levelErr).Warn("Ignoring invalid log level")
	}
}

// ConfigureFrom sets up the standard logger from the logging section of the
// configuration, which may be nil.
func ConfigureFrom(cfg *config.Logging) {
	if cfg == nil {
		Configure(Options{})
		return
	}
	Configure(Options{
		Level:       cfg.Level,
		JSON:        cfg.Format == "json",
		ForceColors: cfg.ForceColors,
	})
}

// moduleRoot returns the directory holding the module's source, with a
// trailing slash, or "" if it can't be determined.
func moduleRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	const self = "util/debuglog/setup.go"
	if !strings.HasSuffix(file, self) {
		panic(fmt.Sprintf("debuglog: expected to be built from %v, got %v", self, file))
	}
	return strings.TrimSuffix(file, self)
}

// callerHook converts timestamps to UTC and strips the module root from
// the caller's filename.
type callerHook struct {
	root string
}

func (callerHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook callerHook) Fire(entry *logrus.Entry) error {
	entry.Time = entry.Time.UTC()
	if entry.HasCaller() && hook.root != "" {
		entry.Caller.File = strings.TrimPrefix(entry.Caller.File, hook.root)
	}
	return nil
}
