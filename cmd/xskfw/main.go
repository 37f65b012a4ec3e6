// File: cmd/xskfw/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
