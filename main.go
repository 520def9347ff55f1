// SPDX-License-Identifier: MPL-2.0

// Command nswrap wraps C and C++ sources in a namespace block.
package main

import cmd "github.com/rtxplore/nswrap/cmd/nswrap"

func main() {
	cmd.Execute()
}
