// Copyright (C) 2026 rapio authors.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package runtimeenv handles process-lifecycle concerns the algorithm
// driver needs outside the event loop proper: dropping root privileges
// after binding low ports, and systemd readiness notification. Adapted
// from pkg/runtimeEnv/setup.go (kept, rewired onto rlog and the new
// module's import path).
package runtimeenv

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"github.com/wxpipe/rapio/pkg/rlog"
)

// DropPrivileges switches the process's uid/gid to the named user/group,
// for an algorithm that bound a privileged port (e.g. -web 80) as root and
// wants to shed that privilege before handling untrusted input. The Go
// runtime applies the underlying syscall to every OS thread, not just the
// calling one.
func DropPrivileges(username, group string) error {
	if group != "" {
		g, err := user.LookupGroup(group)
		if err != nil {
			rlog.Warn("runtimeenv: lookup group:", err)
			return err
		}
		gid, _ := strconv.Atoi(g.Gid)
		if err := syscall.Setgid(gid); err != nil {
			rlog.Warn("runtimeenv: setgid:", err)
			return err
		}
	}

	if username != "" {
		u, err := user.Lookup(username)
		if err != nil {
			rlog.Warn("runtimeenv: lookup user:", err)
			return err
		}
		uid, _ := strconv.Atoi(u.Uid)
		if err := syscall.Setuid(uid); err != nil {
			rlog.Warn("runtimeenv: setuid:", err)
			return err
		}
	}

	return nil
}

// SystemdNotify informs systemd (via sd_notify's systemd-notify shim) that
// the driver reached readiness, or reports a status string, a no-op unless
// launched under systemd (NOTIFY_SOCKET set).
func SystemdNotify(ready bool, status string) {
	if os.Getenv("NOTIFY_SOCKET") == "" {
		return
	}

	args := []string{fmt.Sprintf("--pid=%d", os.Getpid())}
	if ready {
		args = append(args, "--ready")
	}
	if status != "" {
		args = append(args, fmt.Sprintf("--status=%s", status))
	}

	cmd := exec.Command("systemd-notify", args...)
	if err := cmd.Run(); err != nil {
		rlog.Debug("runtimeenv: systemd-notify unavailable:", err)
	}
}
