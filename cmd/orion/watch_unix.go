//go:build linux || darwin

package main

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/urfave/cli/v2"
	"golang.org/x/sys/unix"

	"github.com/Rohithoctacter/orion/internal/target"
)

// watchLoop recompiles sourcePath every time it's written, using inotify
// rather than a poll loop. Grounded on the teacher's filewatcher_unix.go;
// trimmed to one watched file and no debounce timer since a single
// CLOSE_WRITE already coalesces an editor's save into one event.
func watchLoop(c *cli.Context, sourcePath string, abi target.ABI, pf projectFile) error {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return fmt.Errorf("inotify_init failed: %w", err)
	}
	defer unix.Close(fd)

	if _, err := unix.InotifyAddWatch(fd, sourcePath, unix.IN_CLOSE_WRITE); err != nil {
		return fmt.Errorf("failed to watch %s: %w", sourcePath, err)
	}

	recompile := func() {
		src, err := os.ReadFile(sourcePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: io: %v\n", err)
			return
		}
		if err := compileOnce(c, sourcePath, string(src), abi, pf); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	recompile()

	buf := make([]byte, unix.SizeofInotifyEvent*8)
	for {
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return fmt.Errorf("inotify read failed: %w", err)
		}

		offset := 0
		changed := false
		for offset < n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			offset += unix.SizeofInotifyEvent + int(event.Len)
			if event.Mask&unix.IN_CLOSE_WRITE != 0 {
				changed = true
			}
		}
		if changed {
			recompile()
		}
	}
}
