//go:build !windows

// Package stderr captures output that C audio libraries (ALSA, oto) write
// directly to file descriptor 2, bypassing os.Stderr. Left alone, those
// lines corrupt the TUI layout.
package stderr

import (
	"bufio"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Capture redirects fd 2 into the logger until Stop is called.
type Capture struct {
	orig int
	r, w *os.File
	done chan struct{}
}

// Start begins capturing stderr. Each non-empty line is logged at warn
// level. On error the program can continue with stderr untouched.
func Start(logger *zap.Logger) (*Capture, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	fd := int(os.Stderr.Fd())
	orig, err := unix.Dup(fd)
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := unix.Dup2(int(w.Fd()), fd); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, r: r, w: w, done: make(chan struct{})}
	log := logger.Named("stderr")
	go func() {
		defer close(c.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				log.Warn("captured", zap.String("line", line))
			}
		}
	}()
	return c, nil
}

// WriteOriginal writes to the terminal's stderr, bypassing the capture.
func (c *Capture) WriteOriginal(msg string) {
	if c == nil {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	_, _ = unix.Write(c.orig, []byte(msg))
}

// Stop restores stderr and waits for buffered lines to be logged.
func (c *Capture) Stop() {
	if c == nil {
		return
	}
	_ = unix.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = unix.Close(c.orig)
	c.w.Close()
	<-c.done
	c.r.Close()
}
