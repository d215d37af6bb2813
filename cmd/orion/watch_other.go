//go:build !linux && !darwin

package main

import (
	"github.com/urfave/cli/v2"

	"github.com/Rohithoctacter/orion/internal/target"
)

// watchLoop's inotify implementation is Linux/macOS-only; everywhere
// else --watch is a usage error rather than a silent no-op.
func watchLoop(c *cli.Context, sourcePath string, abi target.ABI, pf projectFile) error {
	return usageError{"--watch is not supported on this platform"}
}
