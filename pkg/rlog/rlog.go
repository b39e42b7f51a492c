// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rlog provides severity-leveled logging for the ingest framework.
//
// Time/Date are not logged by default because systemd adds them for us
// (can be changed with SetLogDateTime). Uses the sd-daemon prefix
// convention: https://www.freedesktop.org/software/systemd/man/sd-daemon.html
package rlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

var logDateTime bool

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
	SevereWriter io.Writer = os.Stderr
)

var (
	DebugPrefix  string = "<7>[DEBUG]    "
	InfoPrefix   string = "<6>[INFO]     "
	WarnPrefix   string = "<4>[WARNING]  "
	ErrPrefix    string = "<3>[ERROR]    "
	SeverePrefix string = "<2>[SEVERE]   "
)

var (
	DebugLog  *log.Logger = log.New(DebugWriter, DebugPrefix, 0)
	InfoLog   *log.Logger = log.New(InfoWriter, InfoPrefix, 0)
	WarnLog   *log.Logger = log.New(WarnWriter, WarnPrefix, log.Lshortfile)
	ErrLog    *log.Logger = log.New(ErrWriter, ErrPrefix, log.Llongfile)
	SevereLog *log.Logger = log.New(SevereWriter, SeverePrefix, log.Llongfile)

	DebugTimeLog  *log.Logger = log.New(DebugWriter, DebugPrefix, log.LstdFlags)
	InfoTimeLog   *log.Logger = log.New(InfoWriter, InfoPrefix, log.LstdFlags)
	WarnTimeLog   *log.Logger = log.New(WarnWriter, WarnPrefix, log.LstdFlags|log.Lshortfile)
	ErrTimeLog    *log.Logger = log.New(ErrWriter, ErrPrefix, log.LstdFlags|log.Llongfile)
	SevereTimeLog *log.Logger = log.New(SevereWriter, SeverePrefix, log.LstdFlags|log.Llongfile)
)

// SetLevel discards writers below lvl, in ascending order of severity.
func SetLevel(lvl string) {
	switch lvl {
	case "severe":
		ErrWriter = io.Discard
		fallthrough
	case "err", "error":
		WarnWriter = io.Discard
		fallthrough
	case "warn":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
		// nothing discarded
	default:
		fmt.Fprintf(os.Stderr, "rlog: invalid loglevel %q, using 'debug'\n", lvl)
		SetLevel("debug")
	}
}

func SetLogDateTime(v bool) { logDateTime = v }

func str(v ...interface{}) string                 { return fmt.Sprint(v...) }
func strf(format string, v ...interface{}) string { return fmt.Sprintf(format, v...) }

func Debug(v ...interface{}) {
	if DebugWriter == io.Discard {
		return
	}
	if logDateTime {
		DebugTimeLog.Output(2, str(v...))
	} else {
		DebugLog.Output(2, str(v...))
	}
}

func Info(v ...interface{}) {
	if InfoWriter == io.Discard {
		return
	}
	if logDateTime {
		InfoTimeLog.Output(2, str(v...))
	} else {
		InfoLog.Output(2, str(v...))
	}
}

func Warn(v ...interface{}) {
	if WarnWriter == io.Discard {
		return
	}
	if logDateTime {
		WarnTimeLog.Output(2, str(v...))
	} else {
		WarnLog.Output(2, str(v...))
	}
}

func Error(v ...interface{}) {
	if ErrWriter == io.Discard {
		return
	}
	if logDateTime {
		ErrTimeLog.Output(2, str(v...))
	} else {
		ErrLog.Output(2, str(v...))
	}
}

// Severe logs at the highest severity without exiting. Corresponds to the
// "log severe, continue" disposition in the error taxonomy.
func Severe(v ...interface{}) {
	if SevereWriter == io.Discard {
		return
	}
	if logDateTime {
		SevereTimeLog.Output(2, str(v...))
	} else {
		SevereLog.Output(2, str(v...))
	}
}

// Fatal logs at severe and terminates the process. Used for
// configuration-missing and I/O-fatal dispositions.
func Fatal(v ...interface{}) {
	Severe(v...)
	os.Exit(1)
}

func Debugf(format string, v ...interface{}) {
	if DebugWriter == io.Discard {
		return
	}
	if logDateTime {
		DebugTimeLog.Output(2, strf(format, v...))
	} else {
		DebugLog.Output(2, strf(format, v...))
	}
}

func Infof(format string, v ...interface{}) {
	if InfoWriter == io.Discard {
		return
	}
	if logDateTime {
		InfoTimeLog.Output(2, strf(format, v...))
	} else {
		InfoLog.Output(2, strf(format, v...))
	}
}

func Warnf(format string, v ...interface{}) {
	if WarnWriter == io.Discard {
		return
	}
	if logDateTime {
		WarnTimeLog.Output(2, strf(format, v...))
	} else {
		WarnLog.Output(2, strf(format, v...))
	}
}

func Errorf(format string, v ...interface{}) {
	if ErrWriter == io.Discard {
		return
	}
	if logDateTime {
		ErrTimeLog.Output(2, strf(format, v...))
	} else {
		ErrLog.Output(2, strf(format, v...))
	}
}

func Severef(format string, v ...interface{}) {
	if SevereWriter == io.Discard {
		return
	}
	if logDateTime {
		SevereTimeLog.Output(2, strf(format, v...))
	} else {
		SevereLog.Output(2, strf(format, v...))
	}
}

func Fatalf(format string, v ...interface{}) {
	Severef(format, v...)
	os.Exit(1)
}
