// SPDX-License-Identifier: MPL-2.0

// Command perfjam records measured benchmark limits back into Go sources.
package main

import cmd "github.com/perfjam/perfjam/cmd/perfjam"

func main() {
	cmd.Execute()
}
