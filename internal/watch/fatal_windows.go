// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import "syscall"

// fatalErrnos are the Win32 errors after which ReadDirectoryChangesW stops
// delivering events: ERROR_TOO_MANY_OPEN_FILES (4), ERROR_INVALID_HANDLE (6)
// for a deleted or unmounted directory, and ERROR_NOT_ENOUGH_MEMORY (8).
var fatalErrnos = []syscall.Errno{4, 6, 8}
