// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package log provides leveled logging for the ingest server and the TAT
// registry. Time/date are omitted by default because systemd already adds
// them for us (override with SetLogDateTime).
//
// Uses these prefixes: https://www.freedesktop.org/software/systemd/man/sd-daemon.html
package log

import (
	"fmt"
	"io"
	"os"
	stdlog "log"
)

var logDateTime bool

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
)

var (
	DebugPrefix string = "<7>[DEBUG]   "
	InfoPrefix  string = "<6>[INFO]    "
	WarnPrefix  string = "<4>[WARNING] "
	ErrPrefix   string = "<3>[ERROR]   "
)

var (
	debugLog *stdlog.Logger = stdlog.New(DebugWriter, DebugPrefix, 0)
	infoLog  *stdlog.Logger = stdlog.New(InfoWriter, InfoPrefix, 0)
	warnLog  *stdlog.Logger = stdlog.New(WarnWriter, WarnPrefix, stdlog.Lshortfile)
	errLog   *stdlog.Logger = stdlog.New(ErrWriter, ErrPrefix, stdlog.Llongfile)

	debugTimeLog *stdlog.Logger = stdlog.New(DebugWriter, DebugPrefix, stdlog.LstdFlags)
	infoTimeLog  *stdlog.Logger = stdlog.New(InfoWriter, InfoPrefix, stdlog.LstdFlags)
	warnTimeLog  *stdlog.Logger = stdlog.New(WarnWriter, WarnPrefix, stdlog.LstdFlags|stdlog.Lshortfile)
	errTimeLog   *stdlog.Logger = stdlog.New(ErrWriter, ErrPrefix, stdlog.LstdFlags|stdlog.Llongfile)
)

// SetLogLevel silences every level more verbose than lvl.
func SetLogLevel(lvl string) {
	switch lvl {
	case "err", "fatal":
		WarnWriter = io.Discard
		fallthrough
	case "warn":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
		// nothing to silence
	default:
		fmt.Printf("pkg/log: invalid loglevel %q, using 'debug'\n", lvl)
		SetLogLevel("debug")
	}
}

func SetLogDateTime(logdate bool) {
	logDateTime = logdate
}

func Debug(v ...any) {
	if DebugWriter != io.Discard {
		if logDateTime {
			debugTimeLog.Output(2, fmt.Sprint(v...))
		} else {
			debugLog.Output(2, fmt.Sprint(v...))
		}
	}
}

func Info(v ...any) {
	if InfoWriter != io.Discard {
		if logDateTime {
			infoTimeLog.Output(2, fmt.Sprint(v...))
		} else {
			infoLog.Output(2, fmt.Sprint(v...))
		}
	}
}

func Warn(v ...any) {
	if WarnWriter != io.Discard {
		if logDateTime {
			warnTimeLog.Output(2, fmt.Sprint(v...))
		} else {
			warnLog.Output(2, fmt.Sprint(v...))
		}
	}
}

func Error(v ...any) {
	if ErrWriter != io.Discard {
		if logDateTime {
			errTimeLog.Output(2, fmt.Sprint(v...))
		} else {
			errLog.Output(2, fmt.Sprint(v...))
		}
	}
}

// Fatal logs and terminates the process with a non-zero exit code.
func Fatal(v ...any) {
	Error(v...)
	os.Exit(1)
}

func Debugf(format string, v ...any) {
	if DebugWriter != io.Discard {
		if logDateTime {
			debugTimeLog.Output(2, fmt.Sprintf(format, v...))
		} else {
			debugLog.Output(2, fmt.Sprintf(format, v...))
		}
	}
}

func Infof(format string, v ...any) {
	if InfoWriter != io.Discard {
		if logDateTime {
			infoTimeLog.Output(2, fmt.Sprintf(format, v...))
		} else {
			infoLog.Output(2, fmt.Sprintf(format, v...))
		}
	}
}

func Warnf(format string, v ...any) {
	if WarnWriter != io.Discard {
		if logDateTime {
			warnTimeLog.Output(2, fmt.Sprintf(format, v...))
		} else {
			warnLog.Output(2, fmt.Sprintf(format, v...))
		}
	}
}

func Errorf(format string, v ...any) {
	if ErrWriter != io.Discard {
		if logDateTime {
			errTimeLog.Output(2, fmt.Sprintf(format, v...))
		} else {
			errLog.Output(2, fmt.Sprintf(format, v...))
		}
	}
}

// Fatalf logs and terminates the process with a non-zero exit code.
func Fatalf(format string, v ...any) {
	Errorf(format, v...)
	os.Exit(1)
}
