// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package obs holds the data model shared by every layer of tatstore: the
// three observation variants a signal can carry, and the closed timespan
// used to index them.
package obs

import "fmt"

// Kind is the variant tag fixed by a signal's first observation.
type Kind int

const (
	KindScalar Kind = iota
	KindLogger
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindLogger:
		return "logger"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// LogLevel is the severity of a LogRecord observation.
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelWarning
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
}
