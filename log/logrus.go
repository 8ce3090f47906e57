// Copyright 2022 The Stamp Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"github.com/sirupsen/logrus"
)

// standardLogger is the default Logger, backed by logrus. Warnings and errors are
// always emitted; debug output is opt-in through logrus's own level controls.
type standardLogger struct {
	l *logrus.Logger
}

func newStandardLogger() *standardLogger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return &standardLogger{l: l}
}

// SetLevel adjusts the verbosity of the default logger. It has no effect if the
// user has replaced the logger with SetLogger.
func SetLevel(level string) error {
	sl, ok := log.(*standardLogger)
	if !ok {
		return nil
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}

	sl.l.SetLevel(parsed)
	return nil
}

func (sl *standardLogger) Errorf(format string, args ...interface{}) { sl.l.Errorf(format, args...) }
func (sl *standardLogger) Error(args ...interface{}) { sl.l.Error(args...) }
func (sl *standardLogger) Warnf(format string, args ...interface{}) { sl.l.Warnf(format, args...) }
func (sl *standardLogger) Warn(args ...interface{}) { sl.l.Warn(args...) }
func (sl *standardLogger) Debugf(format string, args ...interface{}) { sl.l.Debugf(format, args...) }
func (sl *standardLogger) Debug(args ...interface{}) { sl.l.Debug(args...) }
func (sl *standardLogger) Infof(format string, args ...interface{}) { sl.l.Infof(format, args...) }
func (sl *standardLogger) Info(args ...interface{}) { sl.l.Info(args...) }
