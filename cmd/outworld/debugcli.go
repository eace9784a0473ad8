package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/mjorgen/outworld/outworld"
)

// debugConsole puts stdin into raw mode so single keypresses can drive a
// tiny diagnostic command set without waiting on Enter, grounded on
// IntuitionAmiga-IntuitionEngine's terminal_host.go: stash term.State on
// entry, term.Restore on exit, never leave the terminal raw on a crash.
type debugConsole struct {
	fd       int
	oldState *term.State
	reader   *bufio.Reader
}

func newDebugConsole() (*debugConsole, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("outworld: stdin is not a terminal, debug console disabled")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("outworld: entering raw mode: %w", err)
	}
	return &debugConsole{fd: fd, oldState: old, reader: bufio.NewReader(os.Stdin)}, nil
}

func (d *debugConsole) close() error {
	return term.Restore(d.fd, d.oldState)
}

// poll reads any pending keypresses and applies the handful of debug
// commands this engine understands: 'p' toggles pause, 's' dumps a
// DebugSnapshot plus the current tic rate, 'q' requests shutdown.
func (d *debugConsole) poll(m *outworld.Machine, e *engine) (quit bool) {
	for d.reader.Buffered() > 0 {
		b, err := d.reader.ReadByte()
		if err != nil {
			return false
		}
		switch b {
		case 'p':
			e.paused = !e.paused
		case 's':
			snap := m.Snapshot()
			fmt.Printf("\r\npart=%d pc=0x%04x draw_buffer=%d front=%d back=%d active_threads=%v tps=%d\r\n",
				snap.Part, snap.PC, snap.DrawBuffer, snap.FrontBuffer, snap.BackBuffer, snap.ActiveThreads, e.ticMeter.Tps())
		case 'q':
			return true
		}
	}
	return false
}
