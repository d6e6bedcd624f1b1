// Package main provides the ytconsole command.
package main

import (
	"os"

	"github.com/ytsaurus/ytconsole/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
