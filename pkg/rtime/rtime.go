// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rtime is a UTC instant with integer seconds-since-epoch and a
// fractional-seconds component, plus the custom format tokens the rest of
// the pipeline expects (%Y %m %d %H %M %S %/ms).
package rtime

import (
	"fmt"
	"strings"
	"time"
)

// Time is a UTC instant. Frac is always in [0,1).
type Time struct {
	Sec  int64
	Frac float64
}

// Duration wraps seconds as a float64, mirroring Time's fractional precision.
type Duration float64

func Seconds(s float64) Duration { return Duration(s) }

func (d Duration) Seconds() float64 { return float64(d) }

// FromUnix builds a Time from seconds-since-epoch and a fractional part,
// normalizing Frac into [0,1) by carrying overflow/underflow into Sec.
func FromUnix(sec int64, frac float64) Time {
	for frac >= 1 {
		frac -= 1
		sec++
	}
	for frac < 0 {
		frac += 1
		sec--
	}
	return Time{Sec: sec, Frac: frac}
}

// FromGoTime converts a standard library time.Time (assumed already UTC-normalized).
func FromGoTime(t time.Time) Time {
	u := t.UTC()
	nsec := u.Nanosecond()
	return Time{Sec: u.Unix(), Frac: float64(nsec) / 1e9}
}

// Now returns the current time.
func Now() Time { return FromGoTime(time.Now()) }

// GoTime converts back to a standard library time.Time in UTC.
func (t Time) GoTime() time.Time {
	return time.Unix(t.Sec, int64(t.Frac*1e9)).UTC()
}

func (t Time) Add(d Duration) Time {
	return FromUnix(t.Sec, t.Frac+float64(d))
}

func (t Time) Sub(o Time) Duration {
	return Duration(float64(t.Sec-o.Sec) + (t.Frac - o.Frac))
}

func (t Time) Before(o Time) bool { return t.Cmp(o) < 0 }
func (t Time) After(o Time) bool  { return t.Cmp(o) > 0 }
func (t Time) Equal(o Time) bool  { return t.Cmp(o) == 0 }

// Cmp returns -1, 0, 1 comparing t to o by (Sec, Frac).
func (t Time) Cmp(o Time) int {
	if t.Sec != o.Sec {
		if t.Sec < o.Sec {
			return -1
		}
		return 1
	}
	if t.Frac != o.Frac {
		if t.Frac < o.Frac {
			return -1
		}
		return 1
	}
	return 0
}

// Format renders t according to layout, supporting the tokens %Y %m %d %H
// %M %S and the custom %/ms (milliseconds, zero-padded to 3 digits).
func Format(t Time, layout string) string {
	g := t.GoTime()
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		if layout[i] != '%' || i+1 >= len(layout) {
			b.WriteByte(layout[i])
			continue
		}
		if layout[i+1] == '/' && i+3 < len(layout) && layout[i+2:i+4] == "ms" {
			fmt.Fprintf(&b, "%03d", g.Nanosecond()/1_000_000)
			i += 3
			continue
		}
		switch layout[i+1] {
		case 'Y':
			fmt.Fprintf(&b, "%04d", g.Year())
			i++
		case 'm':
			fmt.Fprintf(&b, "%02d", int(g.Month()))
			i++
		case 'd':
			fmt.Fprintf(&b, "%02d", g.Day())
			i++
		case 'H':
			fmt.Fprintf(&b, "%02d", g.Hour())
			i++
		case 'M':
			fmt.Fprintf(&b, "%02d", g.Minute())
			i++
		case 'S':
			fmt.Fprintf(&b, "%02d", g.Second())
			i++
		default:
			b.WriteByte(layout[i])
		}
	}
	return b.String()
}

// FilenameString is the canonical timestamp form used in output filenames
// and record IDs: YYYYMMDD-HHMMSS.mmm
func (t Time) FilenameString() string {
	return Format(t, "%Y%m%d-%H%M%S.%/ms")
}

func (t Time) String() string {
	return fmt.Sprintf("%s (%d.%06d)", t.FilenameString(), t.Sec, int64(t.Frac*1e6))
}
