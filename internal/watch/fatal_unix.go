// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import "syscall"

// fatalErrnos are the inotify resource exhaustion errors. ENOSPC means
// fs.inotify.max_user_watches is exhausted, which large include trees hit
// first.
var fatalErrnos = []syscall.Errno{
	syscall.ENOSPC,
	syscall.EMFILE,
	syscall.ENFILE,
}
